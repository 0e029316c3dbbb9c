package trace

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/lruk/pkg/lruk"
)

func readAll(t *testing.T, r *Reader) []Access {
	t.Helper()
	var out []Access
	for {
		a, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, a)
	}
}

func TestReader_ParsesLines(t *testing.T) {
	in := `# header
3
4 scan

  5   lookup
6 index
`
	r, err := NewReader(strings.NewReader(in), CompressionNone)
	require.NoError(t, err)
	require.Equal(t, []Access{
		{Page: 3},
		{Page: 4, Type: lruk.AccessScan},
		{Page: 5, Type: lruk.AccessLookup},
		{Page: 6, Type: lruk.AccessIndex},
	}, readAll(t, r))
}

func TestReader_MalformedLine(t *testing.T) {
	for _, in := range []string{"x\n", "1 2 3\n", "1 bogus\n", "-4\n"} {
		r, err := NewReader(strings.NewReader("0\n"+in), CompressionNone)
		require.NoError(t, err)

		_, err = r.Next()
		require.NoError(t, err)
		_, err = r.Next()
		require.ErrorIs(t, err, ErrMalformedLine)
		require.Contains(t, err.Error(), "line 2")
	}
}

func TestWriterReader_Compressed(t *testing.T) {
	want := []Access{{Page: 1}, {Page: 2, Type: lruk.AccessScan}, {Page: 1, Type: lruk.AccessLookup}}

	for _, c := range []Compression{CompressionNone, CompressionSnappy, CompressionLZ4} {
		t.Run(string(c), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, c)
			require.NoError(t, err)
			for _, a := range want {
				require.NoError(t, w.Write(a))
			}
			require.NoError(t, w.Close())

			r, err := NewReader(&buf, c)
			require.NoError(t, err)
			require.Equal(t, want, readAll(t, r))
		})
	}
}

func TestOpen_DetectsCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.trace.lz4")

	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := NewWriter(f, Detect(path))
	require.NoError(t, err)
	require.NoError(t, w.Write(Access{Page: 42}))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, CompressionAuto)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, []Access{{Page: 42}}, readAll(t, r))
}

func TestDetect(t *testing.T) {
	require.Equal(t, CompressionSnappy, Detect("a.sz"))
	require.Equal(t, CompressionSnappy, Detect("a.SNAPPY"))
	require.Equal(t, CompressionLZ4, Detect("a.lz4"))
	require.Equal(t, CompressionNone, Detect("a.txt"))
}

func TestUnknownCompression(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), "zstd")
	require.ErrorIs(t, err, ErrUnknownCompression)
	_, err = NewWriter(io.Discard, "zstd")
	require.ErrorIs(t, err, ErrUnknownCompression)
}
