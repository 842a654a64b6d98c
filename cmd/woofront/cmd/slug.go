package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/domain/store"
)

var slugCmd = &cobra.Command{
	Use:   "slug <site-url>...",
	Short: "Derive store slugs from site URLs",
	Long: `Print the slug the storefront derives for each site URL. The first label
of the hostname is used; inputs without a host are sanitized, and
"store-<position>" is the last resort.

Examples:
  woofront slug https://lakshmi.cataloghub.in
  woofront slug https://shop1.example.com https://shop2.example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSlug,
}

func init() {
	rootCmd.AddCommand(slugCmd)
}

func runSlug(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for i, raw := range args {
		fmt.Fprintf(out, "%s\t%s\n", store.DeriveSlug("", raw, i+1), raw)
	}
	return nil
}
