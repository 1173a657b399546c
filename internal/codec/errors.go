// Package codec decodes and encodes the block and transaction wire formats.
//
// Decoding is a pure function of the input slice. Decoded scripts and witness
// items are sub-slices of that input, so the caller hands ownership of the
// buffer to the returned values.
package codec

import "errors"

var (
	// ErrMalformedHeader is returned when a block header cannot be decoded.
	ErrMalformedHeader = errors.New("malformed block header")
	// ErrMalformedBlock is returned when a block payload violates the wire layout.
	ErrMalformedBlock = errors.New("malformed block")
	// ErrMalformedTransaction is returned when a transaction cannot be decoded.
	ErrMalformedTransaction = errors.New("malformed transaction")

	// ErrTruncated reports a read past the end of the buffer.
	ErrTruncated = errors.New("unexpected end of buffer")
	// ErrNonCanonical reports a CompactSize integer that is not minimally encoded.
	ErrNonCanonical = errors.New("non-canonical compact size")
	// ErrVarIntOverflow reports a base-128 VARINT that does not fit in 64 bits.
	ErrVarIntOverflow = errors.New("varint overflows 64 bits")
	// ErrCountTooLarge reports an element count that cannot fit in the remaining buffer.
	ErrCountTooLarge = errors.New("element count exceeds remaining buffer")
)
