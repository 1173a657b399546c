package codec

import (
	"encoding/binary"
	"math"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

// ReadCompactSize decodes the CompactSize integer at the start of buf and
// returns the value and the number of bytes consumed.
func ReadCompactSize(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrTruncated
	}
	var (
		v        uint64
		n        int
		minValue uint64
	)
	switch buf[0] {
	case 0xfd:
		n, minValue = 3, 0xfd
		if len(buf) < n {
			return 0, 0, ErrTruncated
		}
		v = uint64(binary.LittleEndian.Uint16(buf[1:]))
	case 0xfe:
		n, minValue = 5, math.MaxUint16+1
		if len(buf) < n {
			return 0, 0, ErrTruncated
		}
		v = uint64(binary.LittleEndian.Uint32(buf[1:]))
	case 0xff:
		n, minValue = 9, math.MaxUint32+1
		if len(buf) < n {
			return 0, 0, ErrTruncated
		}
		v = binary.LittleEndian.Uint64(buf[1:])
	default:
		return uint64(buf[0]), 1, nil
	}
	if v < minValue {
		return 0, 0, ErrNonCanonical
	}
	return v, n, nil
}

// PutCompactSize appends v as a CompactSize integer.
func PutCompactSize(buf []byte, v uint64) []byte {
	return model.AppendCompactSize(buf, v)
}

// ReadVarInt decodes the node's MSB base-128 VARINT used in its index
// databases. Each continuation adds one to the accumulated value, so every
// number has exactly one encoding.
func ReadVarInt(buf []byte) (uint64, int, error) {
	var n uint64
	for i, b := range buf {
		if n > math.MaxUint64>>7 {
			return 0, 0, ErrVarIntOverflow
		}
		n = n<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return n, i + 1, nil
		}
		if n == math.MaxUint64 {
			return 0, 0, ErrVarIntOverflow
		}
		n++
	}
	return 0, 0, ErrTruncated
}

// PutVarInt appends v in the node's base-128 VARINT encoding.
func PutVarInt(buf []byte, v uint64) []byte {
	var tmp [10]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	for v > 0x7f {
		v = (v >> 7) - 1
		i--
		tmp[i] = byte(v&0x7f) | 0x80
	}
	return append(buf, tmp[i:]...)
}

// VarInt reads a base-128 VARINT from the cursor.
func (c *Cursor) VarInt() (uint64, error) {
	v, n, err := ReadVarInt(c.buf[c.pos:])
	if err != nil {
		return 0, err
	}
	c.pos += n
	return v, nil
}
