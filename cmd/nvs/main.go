// Command nvs bundles the developer smoke tests: a single-document
// round-trip and a directory load. Both exit non-zero on any assertion
// failure.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "nvs",
		Short:        "native-vector-store developer smoke tests",
		SilenceUsage: true,
	}

	root.AddCommand(newSmokeCommand())
	root.AddCommand(newLoadCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
