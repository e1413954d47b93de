// Package cli is the go-surface command line: run surfaces, list ports and
// open the terminal monitor.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go-surface/config"
	"go-surface/debug"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "go-surface",
	Short: "Drive MIDI control surfaces from declarative layouts",
	Long: `go-surface maps the buttons, knobs, lights and displays of control
surfaces onto a set of commands, modes and views. Surfaces are described in
a YAML layout file; MIDI controllers are picked up as they are plugged in.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.go-surface.yaml)")
	pf.String("layouts", "", "layout file (default is ~/.config/go-surface/surfaces.yaml)")
	pf.Bool("log", false, "write a debug log")
	pf.String("log-file", debug.DefaultPath(), "debug log path")
	pf.String("log-level", "info", "log level: error, warn, info or debug")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".go-surface")
	}
	viper.SetEnvPrefix("surface")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "error reading settings: %v\n", err)
			os.Exit(1)
		}
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	flags := cmd.Flags()
	enabled, _ := flags.GetBool("log")
	if !enabled {
		return nil
	}
	path, _ := flags.GetString("log-file")
	levelName, _ := flags.GetString("log-level")
	level, err := debug.ParseLevel(levelName)
	if err != nil {
		return err
	}
	return debug.Enable(path, level)
}

// bindFlags sets flags from the settings file or environment when they were
// not given on the command line
func bindFlags(cmd *cobra.Command) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !viper.IsSet(f.Name) {
			return
		}
		val := viper.Get(f.Name)
		if list, ok := val.([]any); ok {
			parts := make([]string, len(list))
			for i, v := range list {
				parts[i] = fmt.Sprint(v)
			}
			val = strings.Join(parts, ",")
		}
		if err := cmd.Flags().Set(f.Name, fmt.Sprint(val)); err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// loadLayouts reads the layout file named by --layouts or the default path
func loadLayouts(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("layouts")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	debug.Info("cli", "loaded %d surfaces", len(cfg.Surfaces))
	return cfg, nil
}

// selectSurfaces filters layouts by name; no names selects all
func selectSurfaces(layouts []config.Layout, names []string) ([]config.Layout, error) {
	if len(names) == 0 {
		return layouts, nil
	}
	var out []config.Layout
	for _, name := range names {
		found := false
		for _, l := range layouts {
			if strings.EqualFold(l.Name, name) {
				out = append(out, l)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no surface named %q", name)
		}
	}
	return out, nil
}
