package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Cursor reads wire primitives from a byte slice without copying.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Bytes returns the next n bytes as a sub-slice of the input.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", n, c.pos, ErrTruncated)
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// Peek returns the byte at the current offset plus ahead without consuming it.
func (c *Cursor) Peek(ahead int) (byte, error) {
	if c.pos+ahead >= len(c.buf) {
		return 0, fmt.Errorf("peek at offset %d: %w", c.pos+ahead, ErrTruncated)
	}
	return c.buf[c.pos+ahead], nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.Bytes(n)
	return err
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int32 reads a little-endian int32.
func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

// Uint64 reads a little-endian uint64.
func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Hash reads a 32-byte digest.
func (c *Cursor) Hash() (chainhash.Hash, error) {
	var h chainhash.Hash
	b, err := c.Bytes(chainhash.HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// CompactSize reads a CompactSize integer.
func (c *Cursor) CompactSize() (uint64, error) {
	v, n, err := ReadCompactSize(c.buf[c.pos:])
	if err != nil {
		return 0, fmt.Errorf("compact size at offset %d: %w", c.pos, err)
	}
	c.pos += n
	return v, nil
}

// Count reads a CompactSize element count and rejects counts whose elements,
// each at least minSize bytes, could not fit in the remaining buffer.
func (c *Cursor) Count(minSize int) (int, error) {
	v, err := c.CompactSize()
	if err != nil {
		return 0, err
	}
	if minSize < 1 {
		minSize = 1
	}
	if v > uint64(c.Remaining()/minSize) {
		return 0, fmt.Errorf("count %d at offset %d: %w", v, c.pos, ErrCountTooLarge)
	}
	return int(v), nil
}

// VarBytes reads a CompactSize length followed by that many bytes.
func (c *Cursor) VarBytes() ([]byte, error) {
	n, err := c.Count(1)
	if err != nil {
		return nil, err
	}
	return c.Bytes(n)
}
