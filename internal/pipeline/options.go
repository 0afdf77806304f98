package pipeline

import (
	"context"

	"github.com/shapestone/csv-engine/internal/assembler"
	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/lexer"
)

// Spec §4.3's named high-water marks. Go channels implement backpressure by
// blocking the sender once a buffered channel is full, so these sizes
// become the relevant channel capacities rather than a polled
// backpressureCheckInterval: a blocked send already is the yield point.
const (
	DefaultLexerInHighWaterMark      = 64 * 1024 // bytes read per chunk from the decoded reader
	DefaultLexerOutHighWaterMark     = 1024       // token batches (one per lexer Feed) buffered between lexer and assembler
	DefaultAssemblerOutHighWaterMark = 256        // records buffered between assembler and consumer
)

// Options configures a Pipeline end to end: decompression, charset
// decoding, lexing, and assembly.
type Options struct {
	// Compression selects the byte-stream decompressor, if any.
	Compression Compression
	// AllowExperimentalCompression opts into deflate-raw and br.
	AllowExperimentalCompression bool

	// Charset names the input's byte encoding; empty or "utf-8" skips
	// decoding. See charset.go for the supported set.
	Charset string
	// AllowNonStandardCharsets opts into accepting a Charset name outside
	// charset.go's known set, treating it as undecoded passthrough instead
	// of rejecting it at construction time (spec §6).
	AllowNonStandardCharsets bool
	// IgnoreBOM strips a leading UTF-8 byte-order mark on the native UTF-8
	// path instead of preserving it as the first field's first codepoint
	// (spec §4.3's decoder config). The UTF-16 decoders always consume a
	// BOM whatever this flag says; the other charsets never strip one.
	IgnoreBOM bool
	// Fatal raises DecodeError on malformed input for the configured
	// charset instead of substituting U+FFFD.
	Fatal bool

	Lexer     lexer.Options
	Assembler assembler.Options

	// ChunkSize overrides DefaultLexerInHighWaterMark.
	ChunkSize int
	// TokenBufferSize overrides DefaultLexerOutHighWaterMark.
	TokenBufferSize int
	// RecordBufferSize overrides DefaultAssemblerOutHighWaterMark.
	RecordBufferSize int

	// Signal, consulted at every stage yield point, aborts the pipeline
	// with csverr.Cancelled when done.
	Signal context.Context

	// Source is a human-readable identifier attached to errors. When it is
	// empty, the pipeline's own cancellation and read errors carry the run
	// ID instead.
	Source string

	// OnFallback is an observation callback for a safety downgrade, never
	// error suppression (spec §7's propagation policy). The pipeline runs
	// only the CPU lexer and has no downgrade path, so it never invokes
	// this callback.
	OnFallback func(reason string)
}

// DefaultOptions returns the pipeline's default end-to-end configuration.
func DefaultOptions() Options {
	return Options{
		IgnoreBOM:        true,
		Lexer:            lexer.DefaultOptions(),
		Assembler:        assembler.DefaultOptions(),
		ChunkSize:        DefaultLexerInHighWaterMark,
		TokenBufferSize:  DefaultLexerOutHighWaterMark,
		RecordBufferSize: DefaultAssemblerOutHighWaterMark,
	}
}

// Validate enforces construction-time validation across all three stages
// plus the pipeline's own options.
func (o Options) Validate() error {
	if o.Compression.experimental() && !o.AllowExperimentalCompression {
		return csverr.New(csverr.UnsupportedCompression, "experimental compression format requires AllowExperimentalCompression: "+string(o.Compression))
	}
	if _, err := lookupCharset(o.Charset, o.AllowNonStandardCharsets); err != nil {
		return err
	}
	if err := o.Lexer.Validate(); err != nil {
		return err
	}
	if err := o.Assembler.Validate(); err != nil {
		return err
	}
	if o.ChunkSize <= 0 {
		return csverr.New(csverr.InvalidOption, "chunkSize must be positive")
	}
	if o.TokenBufferSize <= 0 {
		return csverr.New(csverr.InvalidOption, "tokenBufferSize must be positive")
	}
	if o.RecordBufferSize <= 0 {
		return csverr.New(csverr.InvalidOption, "recordBufferSize must be positive")
	}
	return nil
}

func (o Options) resolvedChunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultLexerInHighWaterMark
}

func (o Options) resolvedTokenBufferSize() int {
	if o.TokenBufferSize > 0 {
		return o.TokenBufferSize
	}
	return DefaultLexerOutHighWaterMark
}

func (o Options) resolvedRecordBufferSize() int {
	if o.RecordBufferSize > 0 {
		return o.RecordBufferSize
	}
	return DefaultAssemblerOutHighWaterMark
}
