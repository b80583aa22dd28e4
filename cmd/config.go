package cmd

import (
	"fmt"

	"github.com/marcus/overlay/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.Keys {
			v, err := cfg.Get(k)
			if err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", k, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set KEY VALUE",
	Short:     "Change a setting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(getBaseDir(), cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Info("config updated", "key", args[0])
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
