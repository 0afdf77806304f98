// Package indexer implements the GPU-Parallel Indexer of spec §4.4: an
// alternate front end that replaces the character-by-character lexer scan
// with a two-pass data-parallel scan for separator byte offsets, falling
// back to the CPU lexer on backend failure.
//
// Go has no in-tree GPU compute API, so the "GPU" here is a data-parallel
// software simulation: workgroups of bytes are scanned concurrently by a
// goroutine pool standing in for GPU threads, following the same two-pass
// quote-parity-XOR structure spec §4.4 describes. This mirrors the
// teacher's internal/fastparser/simd package (stage 1 structural-character
// detection, stage 2 field extraction), generalized from a fixed 64-byte
// AVX2 chunk to the spec's host-prefix-XOR workgroup model.
package indexer

import (
	"github.com/shapestone/csv-engine/internal/csverr"
)

// Unbounded is the sentinel for "no limit" (spec §9(c)).
const Unbounded = -1

// Options configures an Indexer. Unlike internal/lexer, delimiter and
// quotation are limited to a single byte: the packed-separator scan
// operates on raw byte comparisons within a workgroup, not longest-prefix
// matching against a multi-byte pattern.
type Options struct {
	Delimiter byte
	Quotation byte

	// MaxBufferSize bounds the carried leftover buffer, in bytes.
	MaxBufferSize int

	// IgnoreBOM strips a leading UTF-8 byte-order mark from the first chunk.
	IgnoreBOM bool

	// Strict disables the CPU-lexer fallback: an unavailable backend, or a
	// backend failure during Feed (DeviceLost included, after its one
	// retry), is returned to the caller as a csverr.BackendUnavailable
	// error instead.
	Strict bool

	// Source is a human-readable identifier attached to errors.
	Source string

	// OnFallback observes a safety downgrade to the CPU lexer. Mirrors
	// spec §7's propagation policy: an observation callback, never error
	// suppression.
	OnFallback func(reason string)
}

// DefaultOptions returns the indexer's default configuration.
func DefaultOptions() Options {
	return Options{
		Delimiter:     ',',
		Quotation:     '"',
		MaxBufferSize: 10 * 1024 * 1024,
		IgnoreBOM:     true,
	}
}

// Validate enforces construction-time validation.
func (o Options) Validate() error {
	if o.Delimiter == '\r' || o.Delimiter == '\n' {
		return csverr.New(csverr.InvalidOption, "delimiter must not be CR or LF")
	}
	if o.Quotation == '\r' || o.Quotation == '\n' {
		return csverr.New(csverr.InvalidOption, "quotation must not be CR or LF")
	}
	if o.Delimiter == o.Quotation {
		return csverr.New(csverr.InvalidOption, "delimiter must differ from quotation")
	}
	if o.MaxBufferSize != Unbounded && o.MaxBufferSize <= 0 {
		return csverr.New(csverr.InvalidOption, "maxBufferSize must be positive or Unbounded")
	}
	return nil
}
