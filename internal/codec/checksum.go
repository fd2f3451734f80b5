package codec

// Checksum returns the XOR of every byte in b, reduced to 8 bits. It is
// computed over the pre-framing frame bytes (address, opcode, payload) and
// appended as the final byte before the closing delimiter.
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum ^= v
	}
	return sum
}

// AppendChecksum returns frame with its checksum byte appended.
func AppendChecksum(frame []byte) []byte {
	out := make([]byte, len(frame)+1)
	copy(out, frame)
	out[len(frame)] = Checksum(frame)
	return out
}

// VerifyChecksum pops the final byte of framed as the expected checksum and
// reports whether the XOR over the remaining bytes matches it. It returns
// the frame bytes without the checksum.
func VerifyChecksum(framed []byte) (frame []byte, ok bool) {
	if len(framed) == 0 {
		return nil, false
	}
	body := framed[:len(framed)-1]
	want := framed[len(framed)-1]
	return body, Checksum(body) == want
}
