package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

var (
	storesServer string
	storesForce  bool
	storesJSON   bool
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the stores of the directory",
	Long: `List every store the storefront can serve.

Without --server the configured discovery endpoint is queried directly,
falling back to the configured fallback stores when it fails. With --server
the store list of a running gateway is printed; --force asks it to refresh
its directory first (subject to its refresh limit).

Examples:
  woofront stores
  woofront stores --server http://localhost:3000 --force
  woofront stores --json`,
	RunE: runStores,
}

func init() {
	storesCmd.Flags().StringVar(&storesServer, "server", "", "base URL of a running gateway")
	storesCmd.Flags().BoolVar(&storesForce, "force", false, "refresh the directory before listing")
	storesCmd.Flags().BoolVar(&storesJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(storesCmd)
}

func runStores(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var (
		stores []store.Store
		err    error
	)
	if storesServer != "" {
		stores, err = fetchServerStores(ctx, storesServer, storesForce)
	} else {
		stores, err = fetchDirectStores(ctx, storesForce)
	}
	if err != nil {
		return err
	}
	return printStores(cmd.OutOrStdout(), stores, storesJSON)
}

func fetchDirectStores(ctx context.Context, force bool) ([]store.Store, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)
	directory, closeDirectory := newDirectory(cfg, logger)
	defer closeDirectory()

	d, err := directory.Stores(ctx, force)
	if err != nil {
		return nil, err
	}
	if st := directory.Status(); st.UsingFallback {
		logger.Warn("discovery failed, listing fallback stores", "error", st.LastError)
	}
	return d.Stores(), nil
}

// fetchServerStores reads GET /api/stores of a running gateway.
func fetchServerStores(ctx context.Context, server string, force bool) ([]store.Store, error) {
	u, err := url.Parse(strings.TrimRight(server, "/") + "/api/stores")
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if force {
		u.RawQuery = "force=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Stores []store.Store `json:"stores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	return out.Stores, nil
}

func printStores(w io.Writer, stores []store.Store, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stores)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tURL\tGRAPHQL ENDPOINT")
	for _, st := range stores {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Slug, st.Name, st.URL, st.GraphQLEndpoint)
	}
	return tw.Flush()
}
