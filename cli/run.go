package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-surface/config"
	"go-surface/daw"
	"go-surface/debug"
	"go-surface/device"
	"go-surface/host"
	"go-surface/midi"
	"go-surface/remote"
	"go-surface/serialport"
	"go-surface/surface"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured surfaces until interrupted",
	Long: `Run builds every surface in the layout file and drives it. MIDI
surfaces with auto_connect attach when their port appears, serial surfaces
open their port at start and websocket surfaces are served on --listen.`,
	RunE: runSurfaces,
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.Int("hz", 0, "flush rate (default from the layout file)")
	f.StringSlice("surface", nil, "only run these surfaces")
	f.String("listen", ":8765", "address for websocket surfaces")
	f.String("serial", "", "also run a generic surface on this serial port")
	f.Int("serial-baud", serialport.DefaultBaud, "baud rate for --serial")
	f.Bool("no-hotplug", false, "do not scan for MIDI ports")
}

func runSurfaces(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg, err := loadLayouts(cmd)
	if err != nil {
		return err
	}
	names, _ := flags.GetStringSlice("surface")
	layouts, err := selectSurfaces(cfg.Surfaces, names)
	if err != nil {
		return err
	}
	if path, _ := flags.GetString("serial"); path != "" {
		baud, _ := flags.GetInt("serial-baud")
		layouts = append(layouts, serialLayout(path, baud))
	}

	hz, _ := flags.GetInt("hz")
	if hz == 0 {
		hz = cfg.UpdateHz
	}
	h := host.New(daw.New(), hz)
	mux := http.NewServeMux()
	b, err := addSurfaces(h, layouts, mux)
	defer b.close()
	if err != nil {
		return err
	}

	if noHotplug, _ := flags.GetBool("no-hotplug"); !noHotplug && b.midi > 0 {
		h.Watch(midi.NewDeviceManager(layouts))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if b.web > 0 {
		addr, _ := flags.GetString("listen")
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				debug.Error("cli", err, "websocket listener")
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		cmd.Printf("websocket surfaces on %s\n", addr)
	}

	for _, st := range h.Stats() {
		cmd.Printf("surface %s\n", st.Name)
	}
	return h.Run(ctx)
}

// serialLayout is the generic layout on a serial port
func serialLayout(path string, baud int) config.Layout {
	l := config.DefaultLayout(config.ControllerGeneric)
	l.Name = "Serial " + path
	l.Transport = config.TransportSerial
	l.SerialPath = path
	l.SerialBaud = baud
	return l
}

// built tracks what addSurfaces opened
type built struct {
	midi    int
	web     int
	closers []device.Device
}

func (b *built) close() {
	for _, d := range b.closers {
		d.Close()
	}
}

// addSurfaces adds every layout to h and opens the devices that are not
// hot-plugged. Websocket surfaces are mounted on mux under /surface/<name>.
func addSurfaces(h *host.Host, layouts []config.Layout, mux *http.ServeMux) (*built, error) {
	b := &built{}
	for _, l := range layouts {
		var dev device.Device
		switch l.Transport {
		case config.TransportMIDI:
			b.midi++
			if !l.AutoConnect {
				if l.PortName == "" {
					return b, fmt.Errorf("surface %s: port_name is required without auto_connect", l.Name)
				}
				a, err := midi.OpenByName(l.PortName, midi.OptionsFor(l))
				if err != nil {
					return b, fmt.Errorf("surface %s: %w", l.Name, err)
				}
				dev = a
			}
		case config.TransportSerial:
			d, err := serialport.Open(l.SerialPath, l.SerialBaud)
			if err != nil {
				return b, fmt.Errorf("surface %s: %w", l.Name, err)
			}
			dev = d
		case config.TransportWebSocket:
			srv := remote.NewServer(l.Name)
			srv.Register(mux, "/surface/"+url.PathEscape(l.Name))
			b.web++
			dev = srv
		case config.TransportVirtual:
			debug.Info("cli", "skipping virtual surface %s, use monitor", l.Name)
			continue
		}
		if dev != nil {
			b.closers = append(b.closers, dev)
		}
		if _, err := h.Add(l, dev, surface.Options{}); err != nil {
			return b, err
		}
	}
	if len(h.Stats()) == 0 {
		return b, errors.New("no surfaces to run")
	}
	return b, nil
}
