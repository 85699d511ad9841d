package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

type options struct {
	baseURL string
	output  string
	dbPath  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "bookmap",
		Short:         "BookMap catalog and bibliographic lookup CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "table", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("--output must be table, json or yaml (got %q)", opts.output)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "api", envOr("BOOKMAP_API", defaultBaseURL), "API base URL")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table|json|yaml")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "lookup cache database (default BOOKMAP_DB_PATH or ~/.bookmap/cache.db)")

	root.AddCommand(
		newLookupCmd(opts),
		newSearchCmd(opts),
		newBooksCmd(opts),
		newFacetsCmd(opts),
		newGraphCmd(opts),
		newCacheCmd(opts),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
