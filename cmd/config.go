package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/cord19-explorer/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cord19 configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		if p, err := cfgpkg.Path(cfgFile); err == nil {
			fmt.Printf("# %s\n", p)
		}
		fmt.Print(string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
