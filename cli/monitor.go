package cli

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"go-surface/config"
	"go-surface/daw"
	"go-surface/device"
	"go-surface/host"
	"go-surface/surface"
	"go-surface/theme"
	"go-surface/tui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Play a surface from the terminal",
	Long: `Monitor drives a virtual copy of a surface and draws its lights,
rings and displays in the terminal. Keys stand in for the pads, buttons
and knobs.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	f := monitorCmd.Flags()
	f.String("surface", "", "layout to mirror (default is the built-in virtual surface)")
	f.String("palette", "", "GIMP palette file for the UI")
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("monitor needs a terminal")
	}
	flags := cmd.Flags()

	layout := config.DefaultLayout(config.ControllerVirtual)
	if name, _ := flags.GetString("surface"); name != "" {
		cfg, err := loadLayouts(cmd)
		if err != nil {
			return err
		}
		found, err := selectSurfaces(cfg.Surfaces, []string{name})
		if err != nil {
			return err
		}
		layout = found[0]
	}

	var palette *theme.Palette
	if path, _ := flags.GetString("palette"); path != "" {
		p, err := theme.LoadGPL(path)
		if err != nil {
			return err
		}
		palette = p
	}

	h := host.New(daw.New(), host.DefaultUpdateHz)
	dev := device.NewVirtual(layout.Name)
	if _, err := h.Add(layout, dev, surface.Options{}); err != nil {
		return err
	}
	m, err := tui.NewModel(h, dev, layout, theme.New(palette))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	_, runErr := tea.NewProgram(m, tea.WithAltScreen()).Run()
	cancel()
	return errors.Join(runErr, <-done)
}
