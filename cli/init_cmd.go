package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-surface/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a layout file with the built-in surfaces",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("layouts")
		if path == "" {
			var err error
			if path, err = config.ConfigPath(); err != nil {
				return err
			}
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s exists, use --force to overwrite", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		cfg := defaultLayoutFile()
		if err := cfg.Save(path); err != nil {
			return err
		}
		cmd.Printf("wrote %d surfaces to %s\n", len(cfg.Surfaces), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
}

// defaultLayoutFile holds the Launchpad layout and a tablet surface
func defaultLayoutFile() *config.Config {
	cfg := config.DefaultConfig()
	web := config.DefaultLayout(config.ControllerVirtual)
	web.Name = "Tablet"
	web.Transport = config.TransportWebSocket
	cfg.AddSurface(web)
	return cfg
}
