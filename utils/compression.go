package utils

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// CompressionAlgorithm names a Content-Encoding token.
type CompressionAlgorithm string

const (
	CompressionNone   CompressionAlgorithm = "identity"
	CompressionGzip   CompressionAlgorithm = "gzip"
	CompressionBrotli CompressionAlgorithm = "br"
)

// NegotiateEncoding picks brotli, then gzip, from an Accept-Encoding header.
// Codings listed with q=0 are treated as refused.
func NegotiateEncoding(acceptEncoding string) CompressionAlgorithm {
	accepted := make(map[string]bool)
	for _, part := range strings.Split(acceptEncoding, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		if q == "q=0" || q == "q=0.0" || q == "q=0.00" || q == "q=0.000" {
			continue
		}
		accepted[name] = true
	}

	switch {
	case accepted["br"]:
		return CompressionBrotli
	case accepted["gzip"]:
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// NewCompressWriter wraps w with an encoder for algorithm. Close flushes the
// encoder without closing w.
func NewCompressWriter(w io.Writer, algorithm CompressionAlgorithm) (io.WriteCloser, error) {
	switch algorithm {
	case CompressionBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionNone:
		return nopWriteCloser{w}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}

// CompressData compresses data using the specified algorithm
func CompressData(data []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := NewCompressWriter(&buf, algorithm)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write to %s writer: %w", algorithm, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s writer: %w", algorithm, err)
	}
	return buf.Bytes(), nil
}

// DecompressData decompresses data using the specified algorithm
func DecompressData(compressed []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	var reader io.Reader
	switch algorithm {
	case CompressionNone:
		return compressed, nil
	case CompressionBrotli:
		reader = brotli.NewReader(bytes.NewReader(compressed))
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from %s reader: %w", algorithm, err)
	}
	return data, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
