package main

import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-surface/cli"
)

func main() {
	cli.Execute()
}
