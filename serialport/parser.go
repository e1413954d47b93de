package serialport

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

const maxSysEx = 256

// Parser splits a raw MIDI byte stream into messages. It follows running
// status, skips realtime bytes wherever they appear and drops SysEx longer
// than maxSysEx.
type Parser struct {
	status  byte
	data    []byte
	need    int
	sysex   []byte
	inSysEx bool
}

// dataLen is the number of data bytes following a channel status
func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	}
	return 2
}

// Feed consumes one byte and returns a complete message when one ends
func (p *Parser) Feed(b byte) (gomidi.Message, bool) {
	switch {
	case b >= 0xF8:
		return nil, false

	case b == 0xF0:
		p.inSysEx = true
		p.sysex = p.sysex[:0]
		p.status = 0
		return nil, false

	case b == 0xF7:
		if !p.inSysEx {
			return nil, false
		}
		p.inSysEx = false
		data := append([]byte(nil), p.sysex...)
		return gomidi.SysEx(data), true

	case b >= 0xF1:
		// system common cancels running status
		p.inSysEx = false
		p.status = 0
		return nil, false

	case b >= 0x80:
		p.inSysEx = false
		p.status = b
		p.need = dataLen(b)
		p.data = p.data[:0]
		return nil, false
	}

	if p.inSysEx {
		if len(p.sysex) >= maxSysEx {
			p.inSysEx = false
			return nil, false
		}
		p.sysex = append(p.sysex, b)
		return nil, false
	}
	if p.status == 0 {
		return nil, false
	}

	p.data = append(p.data, b)
	if len(p.data) < p.need {
		return nil, false
	}
	msg := make(gomidi.Message, 0, 3)
	msg = append(msg, p.status)
	msg = append(msg, p.data...)
	p.data = p.data[:0]
	return msg, true
}
