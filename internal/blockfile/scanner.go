package blockfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
)

const (
	// DefaultMaxRecordSize bounds the declared length of one record. It is far
	// above the consensus block weight limit so only garbage lengths are rejected.
	DefaultMaxRecordSize = 32 << 20

	prefixSize = 8
	bufferSize = 1 << 20
)

// Options configures how container files are framed.
type Options struct {
	Magic         [4]byte
	XORKey        XORKey
	MaxRecordSize uint32
}

func (o Options) maxRecordSize() uint32 {
	if o.MaxRecordSize == 0 {
		return DefaultMaxRecordSize
	}
	return o.MaxRecordSize
}

// Stats counts what a scanner saw in its file.
type Stats struct {
	Records       uint64
	RecordBytes   uint64
	FramingErrors uint64
	SkippedBytes  uint64
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Records += o.Records
	s.RecordBytes += o.RecordBytes
	s.FramingErrors += o.FramingErrors
	s.SkippedBytes += o.SkippedBytes
}

// Scanner yields the framed records of one container file.
type Scanner struct {
	name   string
	r      *bufio.Reader
	closer io.Closer
	size   int64
	offset int64
	opts   Options
	order  *atomic.Uint64
	stats  Stats
}

// NewScanner frames r, which holds size bytes of a container file called name.
func NewScanner(name string, r io.Reader, size int64, opts Options) *Scanner {
	return &Scanner{
		name:  name,
		r:     bufio.NewReaderSize(newXORReader(r, opts.XORKey), bufferSize),
		size:  size,
		opts:  opts,
		order: new(atomic.Uint64),
	}
}

// Open opens the container file at path.
func Open(path string, opts Options) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &FileError{Path: path, Err: err}
	}
	s := NewScanner(path, f, info.Size(), opts)
	s.closer = f
	return s, nil
}

// Close releases the underlying file, if the scanner opened one.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Stats returns the counters collected so far.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Next returns the next record, or io.EOF after the last one. Any other error
// means the file could not be read any further.
func (s *Scanner) Next() (model.RawRecord, error) {
	maxSize := s.opts.maxRecordSize()

	for {
		remaining := s.size - s.offset
		if remaining < prefixSize {
			if err := s.skip(int(remaining)); err != nil {
				return model.RawRecord{}, err
			}
			return model.RawRecord{}, io.EOF
		}

		head, err := s.r.Peek(prefixSize)
		if err != nil {
			return model.RawRecord{}, s.ioError(err)
		}

		if !bytes.Equal(head[:4], s.opts.Magic[:]) {
			found, err := s.resync()
			if err != nil {
				return model.RawRecord{}, err
			}
			if found {
				s.stats.FramingErrors++
			}
			continue
		}

		length := binary.LittleEndian.Uint32(head[4:])
		if length == 0 || length > maxSize || int64(length) > remaining-prefixSize {
			// Bad length after a good marker: one framing error, then search
			// past this marker for the next one.
			s.stats.FramingErrors++
			if _, err := s.resync(); err != nil {
				return model.RawRecord{}, err
			}
			continue
		}

		if _, err := s.r.Discard(prefixSize); err != nil {
			return model.RawRecord{}, s.ioError(err)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(s.r, payload); err != nil {
			return model.RawRecord{}, s.ioError(err)
		}

		rec := model.RawRecord{
			File:        s.name,
			Offset:      s.offset + prefixSize,
			Length:      length,
			Bytes:       payload,
			SourceOrder: s.order.Add(1) - 1,
		}
		s.offset += prefixSize + int64(length)
		s.stats.Records++
		s.stats.RecordBytes += uint64(length)
		return rec, nil
	}
}

// resync skips forward to the next marker. It reports whether one was found
// before the end of the file.
func (s *Scanner) resync() (bool, error) {
	magic := s.opts.Magic[:]
	// The bytes at the current offset are known not to start a valid record.
	from := 1
	for {
		remaining := s.size - s.offset
		if remaining < int64(len(magic)) {
			return false, s.skip(int(remaining))
		}

		window := bufferSize
		if int64(window) > remaining {
			window = int(remaining)
		}
		buf, err := s.r.Peek(window)
		if err != nil && !errors.Is(err, io.EOF) {
			return false, s.ioError(err)
		}
		if len(buf) < len(magic) {
			return false, s.ioError(io.ErrUnexpectedEOF)
		}

		if i := bytes.Index(buf[from:], magic); i >= 0 {
			return true, s.skip(i + from)
		}
		// Keep the tail: a marker may straddle the window boundary.
		if err := s.skip(len(buf) - len(magic) + 1); err != nil {
			return false, err
		}
		from = 0
	}
}

func (s *Scanner) skip(n int) error {
	if n <= 0 {
		return nil
	}
	discarded, err := s.r.Discard(n)
	s.offset += int64(discarded)
	s.stats.SkippedBytes += uint64(discarded)
	if err != nil {
		return s.ioError(err)
	}
	return nil
}

func (s *Scanner) ioError(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &FileError{Path: s.name, Err: fmt.Errorf("offset %d: %w", s.offset, err)}
}
