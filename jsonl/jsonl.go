// Package jsonl reads and writes line delimited files, with transparent
// gzip and zstd compression chosen by file extension.
package jsonl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

// MaxLineSize is the longest line Scan accepts. Some records carry long
// reviews and reference lists.
const MaxLineSize = 64 * 1024 * 1024

// Open opens a file for reading, decompressing .gz and .zst files.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case strings.HasSuffix(filename, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

// Create creates a file for writing, compressing .gz and .zst files.
func Create(filename string) (io.WriteCloser, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		return &writeCloser{writer: gzip.NewWriter(f), file: f}, nil
	case strings.HasSuffix(filename, ".zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error creating zstd writer: %w", err)
		}
		return &writeCloser{writer: zw, file: f}, nil
	default:
		return f, nil
	}
}

// Scanner reads lines. Lines longer than MaxLineSize are skipped and
// passed to TooLong, if set, so one oversized record does not end the
// scan.
type Scanner struct {
	MaxLineSize int
	TooLong     func(lineNum int64, size int)
}

// Scan calls fn for every line of r, with a 1-based line number. The line
// slice is only valid during the call. Scanning stops at the first error
// returned by fn.
func Scan(r io.Reader, fn func(line []byte, lineNum int64) error) error {
	s := Scanner{MaxLineSize: MaxLineSize}
	return s.Scan(r, fn)
}

// Scan works like the package level Scan, with the limits of s.
func (s *Scanner) Scan(r io.Reader, fn func(line []byte, lineNum int64) error) error {
	var (
		br      = bufio.NewReaderSize(r, 64*1024)
		limit   = s.MaxLineSize
		line    []byte
		size    int
		lineNum int64
	)
	var prev, last byte // last two bytes read, for the line terminator
	if limit <= 0 {
		limit = MaxLineSize
	}
	for {
		chunk, err := br.ReadSlice('\n')
		switch {
		case len(chunk) > 1:
			prev, last = chunk[len(chunk)-2], chunk[len(chunk)-1]
		case len(chunk) == 1:
			prev, last = last, chunk[0]
		}
		size += len(chunk)
		if len(line) <= limit+2 {
			line = append(line, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && err != io.EOF {
			return fmt.Errorf("line %d: %w", lineNum+1, err)
		}
		if size == 0 {
			return nil
		}
		lineNum++
		n := size
		if last == '\n' {
			n--
			if n > 0 && prev == '\r' {
				n--
			}
		}
		if n > limit {
			if s.TooLong != nil {
				s.TooLong(lineNum, n)
			}
		} else if ferr := fn(line[:n], lineNum); ferr != nil {
			return ferr
		}
		if err == io.EOF {
			return nil
		}
		line, size, prev, last = line[:0], 0, 0, 0
	}
}

// readCloser closes a decompressor and its underlying file.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// writeCloser ensures both the compression writer and file are closed.
type writeCloser struct {
	writer io.WriteCloser
	file   *os.File
}

func (c *writeCloser) Write(p []byte) (int, error) {
	return c.writer.Write(p)
}

func (c *writeCloser) Close() error {
	if err := c.writer.Close(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}
