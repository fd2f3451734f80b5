package codec

import "errors"

// Diagnostic decode errors. These are surfaced, never crash the process,
// per the error handling design's decode paths.
var (
	ErrDecodeTruncated    = errors.New("codec: truncated frame")
	ErrDecodeBadChecksum  = errors.New("codec: checksum mismatch")
	ErrDecodeShortPayload = errors.New("codec: payload too short for opcode")
)
