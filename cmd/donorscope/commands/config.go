package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/data4good/donorscope/config"
	"github.com/data4good/donorscope/display"
)

// ConfigCmd manages the donorscope configuration.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or save the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cfg)
		}

		if file := config.ConfigFileUsed(); file != "" {
			pterm.Info.Printf("Configuration file: %s\n", file)
		} else {
			pterm.Info.Println("No configuration file found; showing defaults")
		}
		pterm.Printf("  Input directory:  %s\n", cfg.Input.Dir)
		pterm.Printf("  Output directory: %s\n", cfg.Output.Dir)
		pterm.Printf("  Database:         %s\n", cfg.Database.Path)
		pterm.Printf("  Sources:          %d\n", len(cfg.Input.Sources))
		pterm.Printf("  Join path:        %d hops from %q\n", len(cfg.Pipeline.Hops), cfg.Pipeline.Source)
		for _, hop := range cfg.Pipeline.Hops {
			pterm.Printf("    %s.%s -> %s.%s\n", hop.Left, hop.LeftKey, hop.Right, hop.RightKey)
		}
		pterm.Printf("  Persona key:      %s\n", cfg.Pipeline.PersonaKey)
		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Save the effective configuration to a TOML file",
	Long: `Save the effective configuration to a TOML file.

Defaults to donorscope.toml in the current directory. An existing file is
rotated into .back1 through .back3 before being overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		path := "donorscope.toml"
		if len(args) == 1 {
			path = args[0]
		}

		if err := config.Save(cfg, path); err != nil {
			return err
		}
		pterm.Success.Printf("Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSaveCmd)
}
