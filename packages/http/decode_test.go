package http

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "zlib":
		w := zlib.NewWriter(&buf)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "flate":
		w, ferr := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, ferr)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	return buf.Bytes()
}

func TestDecodeBody(t *testing.T) {
	page := []byte("<html><body>status page</body></html>")

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{name: "identity", encoding: "", body: page},
		{name: "explicit identity", encoding: "identity", body: page},
		{name: "gzip", encoding: "gzip", body: compress(t, "gzip", page)},
		{name: "gzip upper case", encoding: "GZIP", body: compress(t, "gzip", page)},
		{name: "zlib deflate", encoding: "deflate", body: compress(t, "zlib", page)},
		{name: "raw deflate", encoding: "deflate", body: compress(t, "flate", page)},
		{name: "brotli", encoding: "br", body: compress(t, "br", page)},
		{name: "unknown encoding passes through", encoding: "compress", body: page},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := decodeBody(tt.encoding, tt.body)
			require.NoError(t, err)
			assert.Equal(t, page, decoded)
		})
	}
}

func TestDecodeBody_Corrupt(t *testing.T) {
	_, err := decodeBody("gzip", []byte("not gzip"))
	assert.Error(t, err)
}

func TestDecodeBody_Empty(t *testing.T) {
	decoded, err := decodeBody("gzip", nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
