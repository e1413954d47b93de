package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-surface/config"
	"go-surface/midi"
	"go-surface/serialport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI and serial ports and the layout each would use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadLayouts(cmd)
		if err != nil {
			return err
		}
		ins, outs := midi.ListPorts()
		serials, err := serialport.List()
		if err != nil {
			cmd.PrintErrf("serial ports: %v\n", err)
		}
		printPorts(cmd.OutOrStdout(), cfg.Surfaces, ins, outs, serials)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func printPorts(w io.Writer, layouts []config.Layout, ins, outs, serials []string) {
	fmt.Fprintln(w, "MIDI inputs:")
	if len(ins) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, name := range ins {
		match := "-"
		if l, ok := midi.MatchLayout(layouts, name); ok {
			match = l.Name
		}
		fmt.Fprintf(w, "  %2d  %-40s %s\n", i, name, match)
	}

	fmt.Fprintln(w, "MIDI outputs:")
	if len(outs) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, name := range outs {
		fmt.Fprintf(w, "  %2d  %s\n", i, name)
	}

	fmt.Fprintln(w, "Serial ports:")
	if len(serials) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, name := range serials {
		fmt.Fprintf(w, "      %s\n", name)
	}
}
