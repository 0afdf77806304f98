package pipeline

import (
	"bufio"
	"bytes"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/shapestone/csv-engine/internal/csverr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// utf8ReplacementChar is the UTF-8 encoding of U+FFFD, the substitution
// character golang.org/x/text/encoding decoders emit for malformed input.
var utf8ReplacementChar = []byte{0xEF, 0xBF, 0xBD}

// stripUTF8BOM discards a leading byte-order mark from r when ignoreBOM is
// true. Only the native UTF-8 path needs this: golang.org/x/text's UTF-16
// decoders consume their own BOM via unicode.UseBOM.
func stripUTF8BOM(r io.Reader, ignoreBOM bool) io.Reader {
	if !ignoreBOM {
		return r
	}
	br := bufio.NewReader(r)
	peek, _ := br.Peek(len(utf8BOM))
	if bytes.Equal(peek, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// fatalDecodeReader raises csverr.DecodeError the first time a decoded chunk
// contains the replacement character, approximating spec §4.3's fatal=true
// decoder mode without a decoder implementation that can itself distinguish
// "genuine U+FFFD in the input" from "substitution for malformed bytes".
type fatalDecodeReader struct {
	r      io.Reader
	source string
}

func (f *fatalDecodeReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if n > 0 && bytes.Contains(p[:n], utf8ReplacementChar) {
		return n, csverr.New(csverr.DecodeError, "malformed input for configured charset").WithSource(f.source)
	}
	return n, err
}

// decodedReader composes decompression and charset decoding into a single
// byte stream, applying BOM stripping and the fatal decode mode per opts.
func decodedReader(r io.Reader, opts Options) (io.Reader, error) {
	r, err := decompressor(r, opts.Compression, opts.AllowExperimentalCompression)
	if err != nil {
		return nil, err
	}

	enc, err := lookupCharset(opts.Charset, opts.AllowNonStandardCharsets)
	if err != nil {
		return nil, err
	}

	if enc == nil {
		r = stripUTF8BOM(r, opts.IgnoreBOM)
		if opts.Fatal {
			// x/text's UTF-8 decoder turns malformed bytes into U+FFFD,
			// which fatalDecodeReader below then reports.
			r = transform.NewReader(r, unicode.UTF8.NewDecoder())
		}
	} else {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	if opts.Fatal {
		r = &fatalDecodeReader{r: r, source: opts.Source}
	}
	return r, nil
}
