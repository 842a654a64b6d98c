package http

import (
	"log/slog"
	"net/http"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

// SessionCookieName carries the session id.
const SessionCookieName = "woofront_session"

// CookieSettings holds the attributes of cookies written by the gateway.
type CookieSettings struct {
	Secure bool
}

func (c CookieSettings) session(id string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// responseCookieSink writes selectedStore cookies onto a response.
type responseCookieSink struct {
	w        http.ResponseWriter
	settings CookieSettings
	logger   *slog.Logger
}

func newCookieSink(w http.ResponseWriter, settings CookieSettings, logger *slog.Logger) *responseCookieSink {
	return &responseCookieSink{w: w, settings: settings, logger: logger}
}

// SetSelectedStore implements service.CookieSink.
func (s *responseCookieSink) SetSelectedStore(st store.Store) {
	value, err := store.EncodeCookie(st)
	if err != nil {
		s.logger.Warn("failed to encode selectedStore cookie", "store", st.Slug, "error", err)
		return
	}
	// Scripts read this cookie, so it is not HttpOnly.
	http.SetCookie(s.w, &http.Cookie{
		Name:     store.CookieName,
		Value:    value,
		Path:     "/",
		Secure:   s.settings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSelectedStore implements service.CookieSink.
func (s *responseCookieSink) ClearSelectedStore() {
	http.SetCookie(s.w, &http.Cookie{
		Name:     store.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.settings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
