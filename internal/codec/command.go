package codec

import "fmt"

// Opcode identifies a command's payload shape. The set is closed; the wire
// format has no room for vendor extension.
type Opcode byte

const (
	OpOn        Opcode = 0x20
	OpOff       Opcode = 0x21
	OpLevel     Opcode = 0x22
	OpFade      Opcode = 0x23
	OpPaddSet   Opcode = 0x25
	OpPaddErase Opcode = 0x26
	OpRGBLevel  Opcode = 0x2C
	OpFlash     Opcode = 0x2E
	OpRGBFade   Opcode = 0x31
)

func (o Opcode) String() string {
	switch o {
	case OpOn:
		return "ON"
	case OpOff:
		return "OFF"
	case OpLevel:
		return "LEVEL"
	case OpFade:
		return "FADE"
	case OpPaddSet:
		return "PADDSET"
	case OpPaddErase:
		return "PADDERASE"
	case OpRGBLevel:
		return "RGB_LEVEL"
	case OpFlash:
		return "FLASH"
	case OpRGBFade:
		return "RGB_FADE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", byte(o))
	}
}

// buildFrame lays out the pre-checksum frame: address high, address low,
// opcode, then payload.
func buildFrame(addr Address, op Opcode, payload ...byte) []byte {
	hi, lo := addr.Pack()
	frame := make([]byte, 0, 3+len(payload))
	frame = append(frame, hi, lo, byte(op))
	frame = append(frame, payload...)
	return frame
}

// Packet produces a complete wire packet: checksummed, byte-stuffed, and
// enclosed in framing delimiters, ready to enqueue on the transport.
func Packet(addr Address, op Opcode, payload ...byte) []byte {
	return Encode(AppendChecksum(buildFrame(addr, op, payload...)))
}

// On builds an ON command.
func On(addr Address) []byte { return Packet(addr, OpOn) }

// Off builds an OFF command.
func Off(addr Address) []byte { return Packet(addr, OpOff) }

// Level builds a LEVEL command; level is clamped to 0..255.
func Level(addr Address, level int) []byte {
	return Packet(addr, OpLevel, clampByte(level))
}

// Fade builds a FADE command; level is clamped to 0..255, interval to
// 1..255, step to 1..127.
func Fade(addr Address, level, interval, step int) []byte {
	return Packet(addr, OpFade, clampByte(level), clampInterval(interval), clampStep(step))
}

// RGBLevel builds an RGB_LEVEL command; each channel is clamped to 0..255.
func RGBLevel(addr Address, r, g, b int) []byte {
	return Packet(addr, OpRGBLevel, clampByte(r), clampByte(g), clampByte(b))
}

// Flash builds a FLASH command. steps is clamped to 2..65535, both
// intervals to 1..65535, both levels to 0..255.
func Flash(addr Address, steps, intervalA, intervalB, levelA, levelB int) []byte {
	s := clampInt(steps, 2, 65535)
	ia := clampInt(intervalA, 1, 65535)
	ib := clampInt(intervalB, 1, 65535)
	payload := []byte{
		byte(s >> 8), byte(s),
		byte(ia >> 8), byte(ia),
		byte(ib >> 8), byte(ib),
		clampByte(levelA),
		clampByte(levelB),
	}
	return Packet(addr, OpFlash, payload...)
}

// RGBFade builds an RGB_FADE command: for each of r, g, b independently,
// a (level, interval, step) triple.
func RGBFade(addr Address, r, g, b FadeParams) []byte {
	payload := make([]byte, 0, 9)
	for _, ch := range [3]FadeParams{r, g, b} {
		payload = append(payload, clampByte(ch.Level), clampInterval(ch.Interval), clampStep(ch.Step))
	}
	return Packet(addr, OpRGBFade, payload...)
}

// PaddSet assigns a pseudo-address to the fixture at addr.
func PaddSet(addr, pseudo Address) []byte {
	hi, lo := pseudo.Pack()
	return Packet(addr, OpPaddSet, hi, lo)
}

// PaddErase clears any pseudo-address assigned to the fixture at addr.
func PaddErase(addr Address) []byte { return Packet(addr, OpPaddErase) }

// Decoded is a diagnostically decoded frame: the recovered address,
// opcode, and remaining payload bytes.
type Decoded struct {
	Address Address
	Opcode  Opcode
	Payload []byte
}

// Decode decodes a complete wire packet (with framing delimiters still
// attached) for diagnostic purposes. Checksum failures and truncated
// frames are reported, never panic.
func Decode(packet []byte) (Decoded, error) {
	unstuffed, err := DecodeFrame(packet)
	if err != nil {
		return Decoded{}, err
	}
	return DecodeUnstuffed(unstuffed)
}

// DecodeUnstuffed decodes a frame that has already had its delimiters
// stripped and its escape sequences reversed (checksum still the final
// byte) — the shape codec.Decoder.Feed hands back, as opposed to Decode's
// raw-packet-with-delimiters input.
func DecodeUnstuffed(unstuffed []byte) (Decoded, error) {
	frame, ok := VerifyChecksum(unstuffed)
	if !ok {
		return Decoded{}, ErrDecodeBadChecksum
	}
	if len(frame) < 3 {
		return Decoded{}, ErrDecodeShortPayload
	}
	return Decoded{
		Address: UnpackAddress(frame[0], frame[1]),
		Opcode:  Opcode(frame[2]),
		Payload: frame[3:],
	}, nil
}

// DecodeLenient behaves like Decode but ignores checksum mismatches,
// returning the frame's best-effort interpretation regardless. This backs
// the simulator, which must mirror whatever was actually written even if a
// stray bit makes the checksum look wrong.
func DecodeLenient(packet []byte) (Decoded, error) {
	unstuffed, err := DecodeFrame(packet)
	if err != nil {
		return Decoded{}, err
	}
	return DecodeLenientUnstuffed(unstuffed)
}

// DecodeLenientUnstuffed is DecodeUnstuffed without the checksum check,
// for the same already-unstuffed input shape Decoder.Feed produces.
func DecodeLenientUnstuffed(unstuffed []byte) (Decoded, error) {
	frame := unstuffed
	if len(frame) > 0 {
		frame = frame[:len(frame)-1] // drop checksum byte without verifying it
	}
	if len(frame) < 3 {
		return Decoded{}, ErrDecodeShortPayload
	}
	return Decoded{
		Address: UnpackAddress(frame[0], frame[1]),
		Opcode:  Opcode(frame[2]),
		Payload: frame[3:],
	}, nil
}
