package lines

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	perr "enscheck/internal/platform/errors"
	"enscheck/internal/services/resolve/domain"
)

// Stdin is the path that selects standard input
const Stdin = "-"

var gzipMagic = []byte{0x1f, 0x8b}

// Reader streams names from a line-oriented source and implements domain.NameSource
type Reader struct {
	closers []io.Closer
	br      *bufio.Reader
	err     error
	lines   int
	names   int
}

// Open opens path ("-" for stdin) and wraps it in a Reader
func Open(path string) (*Reader, error) {
	if path == Stdin {
		return NewReader(io.NopCloser(os.Stdin))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "open names file %s", path)
	}
	return NewReader(f)
}

// NewReader creates a Reader from r, decompressing transparently when r is gzip
func NewReader(r io.ReadCloser) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = r.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "read names header")
	}
	rd := &Reader{closers: []io.Closer{r}, br: br}
	if bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = r.Close()
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "open gzip names")
		}
		rd.closers = append([]io.Closer{gz}, rd.closers...)
		rd.br = bufio.NewReaderSize(gz, 64*1024)
	}
	return rd, nil
}

// Next returns the next name line, io.EOF at the end, or domain.ErrSkipLine
// for a line that is not valid UTF-8
func (rd *Reader) Next() (string, error) {
	for {
		if rd.err != nil {
			return "", rd.err
		}
		line, err := rd.br.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				rd.err = perr.Wrap(err, perr.ErrorCodeUnknown, "read names")
				return "", rd.err
			}
			rd.err = io.EOF
			if len(line) == 0 {
				return "", io.EOF
			}
		}
		rd.lines++

		line = bytes.TrimRight(line, "\r\n")
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		if !utf8.Valid(line) {
			return "", domain.ErrSkipLine
		}
		rd.names++
		return string(line), nil
	}
}

// Lines returns the number of physical lines consumed so far
func (rd *Reader) Lines() int { return rd.lines }

// Names returns the number of name lines returned so far
func (rd *Reader) Names() int { return rd.names }

// Close closes the decompressor and the underlying reader
func (rd *Reader) Close() error {
	var first error
	for _, c := range rd.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Count returns the number of name lines in path without resolving them
func Count(path string) (int, error) {
	rd, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rd.Close() }()
	n := 0
	for {
		_, err := rd.Next()
		switch {
		case errors.Is(err, io.EOF):
			return n, nil
		case errors.Is(err, domain.ErrSkipLine):
			continue
		case err != nil:
			return n, err
		}
		n++
	}
}
