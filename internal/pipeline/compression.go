package pipeline

import (
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/shapestone/csv-engine/internal/csverr"
)

// Compression names one member of spec §4.3's closed decompression format
// set. gzip and deflate are universally available; br and deflate-raw are
// experimental and require Options.AllowExperimentalCompression.
type Compression string

const (
	CompressionNone       Compression = ""
	CompressionGzip       Compression = "gzip"
	CompressionDeflate    Compression = "deflate"     // zlib-wrapped (RFC 1950)
	CompressionDeflateRaw Compression = "deflate-raw"  // headerless (RFC 1951), experimental
	CompressionBrotli     Compression = "br"           // experimental
)

func (c Compression) experimental() bool {
	return c == CompressionDeflateRaw || c == CompressionBrotli
}

// decompressor wraps r with the decoder for c. allowExperimental gates the
// br and deflate-raw formats behind the spec's explicit opt-in flag.
func decompressor(r io.Reader, c Compression, allowExperimental bool) (io.Reader, error) {
	switch c {
	case CompressionNone:
		return r, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, csverr.Wrap(csverr.DecodeError, "opening gzip stream", err)
		}
		return zr, nil
	case CompressionDeflate:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, csverr.Wrap(csverr.DecodeError, "opening deflate (zlib) stream", err)
		}
		return zr, nil
	case CompressionDeflateRaw:
		if !allowExperimental {
			return nil, csverr.New(csverr.UnsupportedCompression, "deflate-raw requires AllowExperimentalCompression")
		}
		return flate.NewReader(r), nil
	case CompressionBrotli:
		if !allowExperimental {
			return nil, csverr.New(csverr.UnsupportedCompression, "br requires AllowExperimentalCompression")
		}
		return brotli.NewReader(r), nil
	default:
		return nil, csverr.New(csverr.UnsupportedCompression, "unknown compression format: "+string(c))
	}
}
