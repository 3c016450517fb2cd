// Command combinations runs the combinations API and its maintenance tools.
//
//	@title			Combinations API
//	@version		1.0
//	@description	Generates combinations of labeled items drawn from distinct groups and stores every request, result and combination hash.
//	@BasePath		/api
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env file: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "combinations",
		Short:         "Combinations of items from distinct groups, over HTTP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), generateCmd())
	return root
}
