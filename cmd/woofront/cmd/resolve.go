package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
	"github.com/Singh-Rishabh/WooFrontEnd/internal/service"
)

var (
	resolvePath   string
	resolveCookie string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which endpoint a page render would bind",
	Long: `Run the server-side endpoint resolution for one page request and print
the decision: the selectedStore cookie wins, then a /store/<slug> path, then
the placeholder endpoint.

Examples:
  woofront resolve --path /store/lakshmi/products
  woofront resolve --path /cart --cookie "$(cat cookie.txt)"`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePath, "path", "/", "request path")
	resolveCmd.Flags().StringVar(&resolveCookie, "cookie", "", "raw selectedStore cookie value")
	rootCmd.AddCommand(resolveCmd)
}

// recordingSink captures the cookie a render pass would write.
type recordingSink struct {
	set     *store.Store
	cleared bool
}

func (s *recordingSink) SetSelectedStore(st store.Store) {
	s.set = &st
}

func (s *recordingSink) ClearSelectedStore() {
	s.cleared = true
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	directory, closeDirectory := newDirectory(cfg, logger)
	defer closeDirectory()
	resolver := service.NewEndpointResolver(directory, newClientFactory(cfg), bindingPolicy(cfg), logger)

	sink := &recordingSink{}
	rs, err := resolver.ResolveServer(ctx, service.RenderRequest{
		SelectedStoreCookie: resolveCookie,
		Path:                resolvePath,
	}, sink)
	if err != nil {
		return err
	}
	defer rs.Close()

	printResolution(cmd.OutOrStdout(), resolvePath, rs, sink)
	return nil
}

func printResolution(w io.Writer, path string, rs *service.RenderScope, sink *recordingSink) {
	fmt.Fprintf(w, "path:      %s\n", path)
	fmt.Fprintf(w, "route:     %s", rs.Route.Class)
	if rs.Route.Name != "" {
		fmt.Fprintf(w, " (%s)", rs.Route.Name)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "source:    %s\n", rs.Resolution.Source)
	if st := rs.Resolution.Store; st != nil {
		fmt.Fprintf(w, "store:     %s (%s)\n", st.Slug, st.Name)
	}
	if b := rs.Resolution.Binding; b != nil {
		fmt.Fprintf(w, "endpoint:  %s\n", b.Endpoint)
	}
	if sink.set != nil {
		fmt.Fprintf(w, "cookie:    primed with %s\n", sink.set.Slug)
	}
}
