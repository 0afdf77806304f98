package lexer

import (
	"context"
	"strings"

	"github.com/shapestone/csv-engine/internal/csverr"
)

// Unbounded is the sentinel for "no limit", standing in for the source
// spec's Number.POSITIVE_INFINITY per spec §9(c): Go has no first-class
// infinite integer, so size-bound options use this sentinel instead.
const Unbounded = -1

// Options configures a Lexer. Mirrors spec §4.1's table.
type Options struct {
	// Delimiter separates fields. Non-empty, no CR/LF, must differ from Quotation.
	Delimiter string
	// Quotation delimits quoted fields. Non-empty, no CR/LF.
	Quotation string
	// MaxBufferSize bounds the carried unconsumed-tail buffer, in bytes.
	MaxBufferSize int
	// MaxFieldSize bounds a single field's length, in bytes.
	MaxFieldSize int
	// TrackLocation enables TokenLocation population on emitted tokens.
	TrackLocation bool
	// Source is a human-readable identifier attached to errors.
	Source string
	// Signal, if non-nil, is consulted at the start of every Feed call;
	// a done context aborts the lexer with csverr.Cancelled.
	Signal context.Context
}

// DefaultOptions returns the spec's default lexer configuration.
func DefaultOptions() Options {
	return Options{
		Delimiter:     ",",
		Quotation:     `"`,
		MaxBufferSize: 10 * 1024 * 1024,
		MaxFieldSize:  10 * 1024 * 1024,
	}
}

// Validate enforces spec §6's construction-time validation rules.
func (o Options) Validate() error {
	if o.Delimiter == "" || strings.ContainsAny(o.Delimiter, "\r\n") {
		return csverr.New(csverr.InvalidOption, "delimiter must be non-empty and must not contain CR or LF")
	}
	if o.Quotation == "" || strings.ContainsAny(o.Quotation, "\r\n") {
		return csverr.New(csverr.InvalidOption, "quotation must be non-empty and must not contain CR or LF")
	}
	if o.Delimiter == o.Quotation {
		return csverr.New(csverr.InvalidOption, "delimiter must differ from quotation")
	}
	if strings.HasPrefix(o.Delimiter, o.Quotation) || strings.HasPrefix(o.Quotation, o.Delimiter) {
		return csverr.New(csverr.InvalidOption, "delimiter and quotation must not be a prefix of one another")
	}
	if o.MaxBufferSize != Unbounded && o.MaxBufferSize <= 0 {
		return csverr.New(csverr.InvalidOption, "maxBufferSize must be positive or Unbounded")
	}
	if o.MaxFieldSize != Unbounded && o.MaxFieldSize <= 0 {
		return csverr.New(csverr.InvalidOption, "maxFieldSize must be positive or Unbounded")
	}
	return nil
}
