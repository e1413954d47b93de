package control

// RelativeEncoding decodes a 7-bit relative encoder message into a delta
type RelativeEncoding int

const (
	// 1..63 up, 127..65 down (127 = -1)
	RelativeTwosComplement RelativeEncoding = iota
	// 1..63 up, 65..127 down (65 = -1)
	RelativeSignedBit
	// 65..127 up, 63..0 down around 64
	RelativeBinOffset
)

// Decode returns the signed step count for raw
func (r RelativeEncoding) Decode(raw int) int {
	raw &= 0x7F
	switch r {
	case RelativeSignedBit:
		if raw&0x40 != 0 {
			return -(raw & 0x3F)
		}
		return raw & 0x3F
	case RelativeBinOffset:
		return raw - 64
	default:
		if raw >= 64 {
			return raw - 128
		}
		return raw
	}
}

// ParseRelativeEncoding maps a layout name to an encoding
func ParseRelativeEncoding(name string) (RelativeEncoding, bool) {
	switch name {
	case "", "twos-complement":
		return RelativeTwosComplement, true
	case "signed-bit":
		return RelativeSignedBit, true
	case "bin-offset":
		return RelativeBinOffset, true
	default:
		return RelativeTwosComplement, false
	}
}

// Encode is the inverse of Decode for deltas within ±63
func (r RelativeEncoding) Encode(delta int) int {
	delta = max(-63, min(delta, 63))
	switch r {
	case RelativeSignedBit:
		if delta < 0 {
			return 0x40 | -delta
		}
		return delta
	case RelativeBinOffset:
		return 64 + delta
	default:
		return delta & 0x7F
	}
}
