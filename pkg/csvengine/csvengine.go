// Package csvengine is the public entry point for the streaming CSV
// engine: a three-stage pipeline (lex, assemble, deliver) plus an
// alternate GPU-simulated indexer front end for large inputs.
//
// For one-shot parsing of an io.Reader into records, use Parse. For
// incremental consumption with cooperative backpressure, construct a
// Pipeline directly with NewPipeline and read its Records channel.
// NewLexer, NewAssembler, and NewIndexer expose the individual stages for
// callers assembling a custom pipeline, e.g. swapping the indexer in for
// the lexer ahead of a shared assembler.
package csvengine

import (
	"context"
	"io"

	"github.com/shapestone/csv-engine/internal/assembler"
	"github.com/shapestone/csv-engine/internal/pipeline"
)

// Options configures a Pipeline end to end. Alias of pipeline.Options so
// callers never need to import the internal package directly.
type Options = pipeline.Options

// Record is one assembled row. Alias of assembler.Record.
type Record = assembler.Record

// Field is one cell of a Record. Alias of assembler.Field.
type Field = assembler.Field

// DefaultOptions returns the engine's default end-to-end configuration:
// UTF-8 input, BOM stripped, object-format output, the fill column-count
// strategy.
func DefaultOptions() Options {
	return pipeline.DefaultOptions()
}

// Parse reads r to completion under opts and returns every assembled
// Record, or the first error encountered. Convenience wrapper around
// NewPipeline for callers who don't need streaming consumption.
func Parse(ctx context.Context, r io.Reader, opts Options) ([]Record, error) {
	p, err := pipeline.New(r, opts)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// NewPipeline constructs a Pipeline reading from r. Use its Records method
// for streaming consumption with backpressure, or Run to drain it in one
// call.
func NewPipeline(r io.Reader, opts Options) (*pipeline.Pipeline, error) {
	return pipeline.New(r, opts)
}
