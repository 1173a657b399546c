package blockfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// XORKeyFile is the name of the obfuscation key file Bitcoin Core keeps next
// to the block files.
const XORKeyFile = "xor.dat"

// XORKey is the block file obfuscation key. The zero key leaves data unchanged.
type XORKey [8]byte

// IsZero reports whether the key is a no-op.
func (k XORKey) IsZero() bool {
	return k == XORKey{}
}

// LoadXORKey reads dir/xor.dat. A missing file means the files are not obfuscated.
func LoadXORKey(dir string) (XORKey, error) {
	var key XORKey

	f, err := os.Open(filepath.Join(dir, XORKeyFile))
	if errors.Is(err, fs.ErrNotExist) {
		return key, nil
	}
	if err != nil {
		return key, fmt.Errorf("open xor key: %w", err)
	}
	defer f.Close()

	if _, err := io.ReadFull(f, key[:]); err != nil {
		return key, fmt.Errorf("read xor key: %w", err)
	}
	return key, nil
}

// xorReader undoes the obfuscation. Every byte is XORed with the key byte at
// its file offset modulo 8.
type xorReader struct {
	r   io.Reader
	key XORKey
	pos uint64
}

func newXORReader(r io.Reader, key XORKey) io.Reader {
	if key.IsZero() {
		return r
	}
	return &xorReader{r: r, key: key}
}

func (x *xorReader) Read(p []byte) (int, error) {
	n, err := x.r.Read(p)
	for i := 0; i < n; i++ {
		p[i] ^= x.key[(x.pos+uint64(i))&7]
	}
	x.pos += uint64(n)
	return n, err
}
