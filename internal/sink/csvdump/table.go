package csvdump

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const (
	separator     = ';'
	tmpSuffix     = ".csv.tmp"
	writeBufSize  = 1 << 20
	zstdExtension = ".zst"
)

// table is one csv output file, written under a temporary name until the
// run completes.
type table struct {
	name     string
	dir      string
	compress bool
	rows     uint64

	file *os.File
	buf  *bufio.Writer
	zw   *zstd.Encoder
	w    *csv.Writer
}

func openTable(dir, name string, compress bool, header []string) (*table, error) {
	f, err := os.Create(filepath.Join(dir, name+tmpSuffix))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	t := &table{name: name, dir: dir, compress: compress, file: f, buf: bufio.NewWriterSize(f, writeBufSize)}
	if compress {
		t.zw, err = zstd.NewWriter(t.buf)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create zstd writer for %s: %w", name, err)
		}
		t.w = csv.NewWriter(t.zw)
	} else {
		t.w = csv.NewWriter(t.buf)
	}
	t.w.Comma = separator

	if header != nil {
		if err := t.w.Write(header); err != nil {
			_ = t.close()
			return nil, fmt.Errorf("write %s header: %w", name, err)
		}
	}
	return t, nil
}

func (t *table) write(record []string) error {
	if err := t.w.Write(record); err != nil {
		return fmt.Errorf("write %s row: %w", t.name, err)
	}
	t.rows++
	return nil
}

func (t *table) tmpPath() string {
	return filepath.Join(t.dir, t.name+tmpSuffix)
}

// finalName is <name>-<start>-<end>.csv, with .zst appended when compressed.
func (t *table) finalName(start, end uint64) string {
	name := fmt.Sprintf("%s-%d-%d.csv", t.name, start, end)
	if t.compress {
		name += zstdExtension
	}
	return filepath.Join(t.dir, name)
}

func (t *table) close() error {
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		_ = t.file.Close()
		return fmt.Errorf("flush %s: %w", t.name, err)
	}
	if t.zw != nil {
		if err := t.zw.Close(); err != nil {
			_ = t.file.Close()
			return fmt.Errorf("close zstd writer for %s: %w", t.name, err)
		}
	}
	if err := t.buf.Flush(); err != nil {
		_ = t.file.Close()
		return fmt.Errorf("flush %s: %w", t.name, err)
	}
	if err := t.file.Sync(); err != nil {
		_ = t.file.Close()
		return fmt.Errorf("sync %s: %w", t.name, err)
	}
	return t.file.Close()
}

func (t *table) commit(start, end uint64) (string, error) {
	path := t.finalName(start, end)
	if err := os.Rename(t.tmpPath(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", t.name, err)
	}
	return path, nil
}

func (t *table) discard() error {
	if err := os.Remove(t.tmpPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", t.name, err)
	}
	return nil
}
