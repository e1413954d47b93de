package midi

import (
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-surface/device"
)

// Mackie Control LCD: F0 00 00 66 14 12 <offset> <ascii...> F7, seven
// characters per strip
var lcdHeader = []byte{0x00, 0x00, 0x66, 0x14, 0x12}

const (
	CellWidth = 7
	lcdSize   = 112
)

// Decode turns an incoming message into a surface event. Note-off and
// note-on with velocity 0 both decode to value 0. Pitchbend decodes to its
// unsigned 14-bit value.
func Decode(msg gomidi.Message) (device.Event, bool) {
	var channel, key, velocity, controller, value uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return device.Event{Address: device.Note(channel, uint16(key)), Value: int(velocity)}, true
	case msg.GetNoteEnd(&channel, &key):
		return device.Event{Address: device.Note(channel, uint16(key)), Value: 0}, true
	case msg.GetControlChange(&channel, &controller, &value):
		return device.Event{Address: device.CC(channel, uint16(controller)), Value: int(value)}, true
	case msg.GetPitchBend(&channel, &rel, &abs):
		return device.Event{Address: device.Pitchbend(channel), Value: int(abs)}, true
	}
	return device.Event{}, false
}

// Encode builds the message that sets addr to value
func Encode(addr device.Address, value int) (gomidi.Message, error) {
	if addr.Channel > 15 {
		return nil, fmt.Errorf("encode %s: channel out of range", addr)
	}
	switch addr.Kind {
	case device.KindNote:
		if addr.Number > 127 {
			return nil, fmt.Errorf("encode %s: note out of range", addr)
		}
		return gomidi.NoteOn(addr.Channel, uint8(addr.Number), uint8(min(max(value, 0), 127))), nil
	case device.KindCC:
		if addr.Number > 127 {
			return nil, fmt.Errorf("encode %s: controller out of range", addr)
		}
		return gomidi.ControlChange(addr.Channel, uint8(addr.Number), uint8(min(max(value, 0), 127))), nil
	case device.KindPitchbend:
		v := min(max(value, 0), 0x3FFF)
		return gomidi.Pitchbend(addr.Channel, int16(v-0x2000)), nil
	}
	return nil, fmt.Errorf("encode %s: not a value address", addr)
}

// EncodeText builds the LCD SysEx writing text into a display cell. Text
// is padded or cut to CellWidth; non-ASCII runes become '?'.
func EncodeText(addr device.Address, text string) (gomidi.Message, error) {
	if addr.Kind != device.KindText {
		return nil, fmt.Errorf("encode text %s: not a text address", addr)
	}
	offset := int(addr.Number) * CellWidth
	if offset+CellWidth > lcdSize {
		return nil, fmt.Errorf("encode text %s: cell out of range", addr)
	}

	var b strings.Builder
	for _, r := range text {
		if b.Len() == CellWidth {
			break
		}
		if r < 0x20 || r > 0x7E {
			r = '?'
		}
		b.WriteRune(r)
	}
	for b.Len() < CellWidth {
		b.WriteByte(' ')
	}

	data := make([]byte, 0, len(lcdHeader)+1+CellWidth)
	data = append(data, lcdHeader...)
	data = append(data, byte(offset))
	data = append(data, b.String()...)
	return gomidi.SysEx(data), nil
}
