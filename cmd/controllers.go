package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var controllersCmd = &cobra.Command{
	Use:   "controllers",
	Short: "List registered controllers and injectable dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := newRuntime(getBaseDir(), cfg, logger)
		defer rt.Close()

		fmt.Println("Controllers:")
		for _, name := range rt.controllers.Names() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("Dependencies (for --local):")
		for _, name := range rt.injector.Names() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(controllersCmd)
}
