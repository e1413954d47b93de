package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-surface/config"
	"go-surface/device"
	"go-surface/midi"
	"go-surface/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "events":
		err = withPort(watchEvents)
	case "leds":
		err = withPort(testLEDs)
	case "text":
		err = withPort(testText)
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI hardware checks")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list               - List all MIDI ports")
	fmt.Println("  events <port>      - Print decoded input events")
	fmt.Println("  leds <port>        - Sweep colours over the layout's pads")
	fmt.Println("  text <port> <cell> <text> - Write an LCD cell")
	fmt.Println("  poll               - Report controllers as they come and go")
}

func listPorts() {
	fmt.Println("=== MIDI Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct{ ins, outs []string }
	ch := make(chan result, 1)
	go func() {
		ins, outs := midi.ListPorts()
		ch <- result{ins, outs}
	}()

	select {
	case r := <-ch:
		fmt.Println("Inputs:")
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p)
		}
		fmt.Println("Outputs:")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI service is hung.")
		fmt.Println("Fix (macOS): sudo killall coreaudiod midiserver")
	}
}

// layouts are the built-in tables, used to pick init sequences and pads
var layouts = []config.Layout{
	config.DefaultLayout(config.ControllerLaunchpadX),
	config.DefaultLayout(config.ControllerGeneric),
}

func withPort(fn func(a *midi.Adapter, l config.Layout) error) error {
	if len(os.Args) < 3 {
		usage()
		return nil
	}
	port := os.Args[2]
	l, ok := midi.MatchLayout(layouts, port)
	if !ok {
		l = layouts[1]
	}
	a, err := midi.OpenByName(port, midi.OptionsFor(l))
	if err != nil {
		return err
	}
	defer a.Close()
	fmt.Printf("Opened %s as %s\n", port, l.Name)
	return fn(a, l)
}

func watchEvents(a *midi.Adapter, _ config.Layout) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Println("Press controls, Ctrl+C to exit.")
	for {
		select {
		case <-ctx.Done():
			sent, dropped := a.Stats()
			fmt.Printf("\nsent %d, dropped %d\n", sent, dropped)
			return nil
		case ev, ok := <-a.Events():
			if !ok {
				return nil
			}
			fmt.Printf("[%s] %-12s %d\n", time.Now().Format("15:04:05.000"), ev.Address, ev.Value)
		}
	}
}

func testLEDs(a *midi.Adapter, l config.Layout) error {
	var palette []theme.DeviceColor
	if l.Palette == "launchpad" {
		palette = theme.LaunchpadPalette
	}
	colors := theme.NewColorManager(palette)

	var pads []device.Address
	for _, b := range l.Buttons {
		if b.Group != config.GroupGrid {
			continue
		}
		addr := b.Address
		if b.Light != "" {
			addr = b.Light
		}
		p, err := device.ParseAddress(addr)
		if err != nil {
			return err
		}
		pads = append(pads, p)
	}

	fmt.Println("Sweeping colours...")
	names := colors.Names()
	for i, pad := range pads {
		if err := a.SendRaw(pad, colors.Value(names[i%len(names)])); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	for _, pad := range pads {
		a.SendRaw(pad, colors.Value(theme.ColorOff))
	}
	fmt.Println("Done!")
	return nil
}

func testText(a *midi.Adapter, _ config.Layout) error {
	if len(os.Args) < 5 {
		usage()
		return nil
	}
	cell, err := strconv.Atoi(os.Args[3])
	if err != nil || cell < 0 {
		return fmt.Errorf("bad cell %q", os.Args[3])
	}
	return a.SendText(device.Text(uint16(cell)), os.Args[4])
}

func pollDevices() {
	fmt.Println("Watching for controllers. Connect/disconnect to test. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager(layouts)
	go dm.Run(ctx)
	for ev := range dm.Events() {
		fmt.Printf("[%s] %s %s", time.Now().Format("15:04:05"), ev.Type, ev.ID)
		if ev.Type == midi.DeviceConnected {
			fmt.Printf(" -> %s", ev.Layout.Name)
		}
		fmt.Println()
	}
}
