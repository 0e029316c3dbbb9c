package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/tuannm99/lruk/pkg/lruk"
)

type Compression string

const (
	CompressionAuto   Compression = "auto"
	CompressionNone   Compression = "none"
	CompressionSnappy Compression = "snappy"
	CompressionLZ4    Compression = "lz4"
)

var (
	ErrMalformedLine      = errors.New("trace: malformed line")
	ErrUnknownCompression = errors.New("trace: unknown compression")
)

// Access is one line of a trace: a page id and an optional access type.
type Access struct {
	Page uint64
	Type lruk.AccessType
}

// Detect picks a compression from the file extension.
func Detect(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sz", ".snappy":
		return CompressionSnappy
	case ".lz4":
		return CompressionLZ4
	}
	return CompressionNone
}

// Reader parses a trace stream. Lines look like "<page> [lookup|scan|index]";
// blank lines and lines starting with '#' are skipped.
type Reader struct {
	sc     *bufio.Scanner
	line   int
	closer io.Closer
}

func NewReader(r io.Reader, c Compression) (*Reader, error) {
	var src io.Reader
	switch c {
	case CompressionNone, "":
		src = r
	case CompressionSnappy:
		src = snappy.NewReader(r)
	case CompressionLZ4:
		src = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
	return &Reader{sc: bufio.NewScanner(src)}, nil
}

// Open opens a trace file; CompressionAuto resolves through Detect.
func Open(path string, c Compression) (*Reader, error) {
	if c == CompressionAuto {
		c = Detect(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	r, err := NewReader(f, c)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Next returns the next access or io.EOF.
func (r *Reader) Next() (Access, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		return parseLine(text, r.line)
	}
	if err := r.sc.Err(); err != nil {
		return Access{}, fmt.Errorf("trace: read: %w", err)
	}
	return Access{}, io.EOF
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func parseLine(text string, line int) (Access, error) {
	fields := strings.Fields(text)
	if len(fields) > 2 {
		return Access{}, fmt.Errorf("%w %d: %q", ErrMalformedLine, line, text)
	}
	page, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Access{}, fmt.Errorf("%w %d: %v", ErrMalformedLine, line, err)
	}
	a := Access{Page: page}
	if len(fields) == 2 {
		if a.Type, err = lruk.ParseAccessType(fields[1]); err != nil {
			return Access{}, fmt.Errorf("%w %d: %v", ErrMalformedLine, line, err)
		}
	}
	return a, nil
}

// Writer emits accesses in the format Reader parses. Close flushes the
// compressor but leaves the underlying writer open.
type Writer struct {
	bw   *bufio.Writer
	comp io.WriteCloser
}

func NewWriter(w io.Writer, c Compression) (*Writer, error) {
	out := &Writer{}
	switch c {
	case CompressionNone, "":
		out.bw = bufio.NewWriter(w)
	case CompressionSnappy:
		out.comp = snappy.NewBufferedWriter(w)
		out.bw = bufio.NewWriter(out.comp)
	case CompressionLZ4:
		out.comp = lz4.NewWriter(w)
		out.bw = bufio.NewWriter(out.comp)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, c)
	}
	return out, nil
}

func (w *Writer) Write(a Access) error {
	var err error
	if a.Type == lruk.AccessUnknown {
		_, err = fmt.Fprintf(w.bw, "%d\n", a.Page)
	} else {
		_, err = fmt.Fprintf(w.bw, "%d %s\n", a.Page, a.Type)
	}
	return err
}

func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.comp != nil {
		return w.comp.Close()
	}
	return nil
}
