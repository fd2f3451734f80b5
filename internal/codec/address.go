package codec

import "strconv"

// Address is a 16-bit fixture identifier. Two values are reserved: every
// bit set addresses every fixture on the bus (Broadcast), and every bit
// set except the lowest addresses the master controller (Master).
type Address uint16

const (
	// Broadcast targets every fixture on the bus simultaneously.
	Broadcast Address = 0xFFFF
	// Master targets the bus's master controller.
	Master Address = 0xFFFE
)

// Pack splits an address into its wire byte order: high byte first, then
// low byte (big-endian, per §6's byte order rule).
func (a Address) Pack() (hi, lo byte) {
	return byte(a >> 8), byte(a)
}

// UnpackAddress recombines the high/low bytes produced by Pack.
func UnpackAddress(hi, lo byte) Address {
	return Address(hi)<<8 | Address(lo)
}

// String renders the address as a decimal fixture ID, or a name for the
// two reserved values.
func (a Address) String() string {
	switch a {
	case Broadcast:
		return "broadcast"
	case Master:
		return "master"
	default:
		return strconv.Itoa(int(a))
	}
}
