package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove durable session storage",
	Long: `Remove the session storage file of the sqlite or file driver. Every
browser session loses its selected store, pinned endpoint and last endpoint.
The memory driver keeps nothing on disk.

Examples:
  # Reset with an interactive confirmation
  woofront reset

  # Reset without prompting
  woofront reset --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == "memory" {
		fmt.Fprintln(os.Stderr, "Nothing to reset: the memory driver keeps no files.")
		return nil
	}

	targets := storageFiles(cfg.Storage.Driver, cfg.Storage.Path)
	var existing []string
	for _, path := range targets {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to reset: no session storage found.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "The following will be removed:")
	for _, path := range existing {
		fmt.Fprintf(os.Stderr, "  - %s\n", path)
	}
	if !resetForce {
		fmt.Fprint(os.Stderr, "\nProceed? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	failed := 0
	for _, path := range existing {
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR removing %s: %v\n", path, err)
			failed++
		} else {
			fmt.Fprintf(os.Stderr, "  Removed %s\n", path)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be removed", failed)
	}
	fmt.Fprintln(os.Stderr, "\nReset complete.")
	return nil
}

// storageFiles lists the files a storage driver writes at path.
func storageFiles(driver, path string) []string {
	switch driver {
	case "sqlite":
		return []string{path, path + "-wal", path + "-shm"}
	case "file":
		return []string{path, path + ".bak"}
	default:
		return nil
	}
}
