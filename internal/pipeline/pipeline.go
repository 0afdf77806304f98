package pipeline

import (
	"context"
	"io"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shapestone/csv-engine/internal/assembler"
	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/lexer"
	"github.com/shapestone/csv-engine/internal/token"
)

// Result is one element of a Pipeline's output stream: either a fully
// assembled Record or the terminal error that stopped the pipeline.
type Result struct {
	Record assembler.Record
	Err    error
}

// Pipeline wires decompression, charset decoding, lexing, and assembly into
// a single staged goroutine graph. Spec §4.3's high-water marks become the
// capacities of the channels connecting the stages: a full channel blocking
// its sender is the cooperative-scheduling yield point, so there is no
// separate backpressureCheckInterval counter to maintain.
type Pipeline struct {
	opts   Options
	runID  string
	source io.Reader
}

// New validates opts and constructs a Pipeline reading from r. Each Pipeline
// gets a fresh run ID, used as the default error source when opts.Source is
// empty, and intended for correlating log lines across a single run.
func New(r io.Reader, opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{opts: opts, runID: uuid.NewString(), source: r}, nil
}

// RunID identifies this Pipeline instance across log lines and error reports.
func (p *Pipeline) RunID() string {
	return p.runID
}

// mergedSignal combines ctx with opts.Signal, so a caller that configured
// Options.Signal once (e.g. for reuse across several Run calls) and a caller
// that only ever passes ctx both get honored.
func (p *Pipeline) mergedSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	if p.opts.Signal == nil {
		return merged, cancel
	}
	go func() {
		select {
		case <-p.opts.Signal.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}

func (p *Pipeline) errSource() string {
	if p.opts.Source != "" {
		return p.opts.Source
	}
	return p.runID
}

// Run drains Records to completion and returns every assembled Record, or
// the first error encountered. Convenience wrapper around Records for
// callers that don't need streaming consumption.
func (p *Pipeline) Run(ctx context.Context) ([]assembler.Record, error) {
	var out []assembler.Record
	for res := range p.Records(ctx) {
		if res.Err != nil {
			return out, res.Err
		}
		out = append(out, res.Record)
	}
	return out, nil
}

// Records runs the pipeline and returns a channel of Results. The channel is
// closed after the first error or after the source is fully drained; a
// delivered error is always the final value sent.
func (p *Pipeline) Records(ctx context.Context) <-chan Result {
	out := make(chan Result, p.opts.resolvedRecordBufferSize())
	ctx, cancel := p.mergedSignal(ctx)

	go func() {
		defer close(out)
		defer cancel()

		reader, err := decodedReader(p.source, p.opts)
		if err != nil {
			out <- Result{Err: err}
			return
		}

		tokens := make(chan []token.Field, p.opts.resolvedTokenBufferSize())
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			defer close(tokens)
			return p.feedLexer(gctx, reader, tokens)
		})

		g.Go(func() error {
			return p.feedAssembler(gctx, tokens, out)
		})

		if err := g.Wait(); err != nil {
			out <- Result{Err: err}
		}
	}()

	return out
}

// feedLexer reads chunks from r at p.opts.ChunkSize, runs them through the
// lexer, and pushes the resulting token batches onto tokens. A full tokens
// channel blocks this goroutine: that block is the backpressure point.
func (p *Pipeline) feedLexer(ctx context.Context, r io.Reader, tokens chan<- []token.Field) error {
	lx := lexer.New(p.opts.Lexer)
	buf := make([]byte, p.opts.resolvedChunkSize())

	for {
		if err := checkCancelled(ctx, p.errSource()); err != nil {
			return err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			toks, err := lx.Feed(buf[:n], true)
			if err != nil {
				return err
			}
			if len(toks) > 0 {
				if err := sendTokens(ctx, tokens, toks, p.errSource()); err != nil {
					return err
				}
			}
		}
		if readErr == io.EOF {
			toks, err := lx.Flush()
			if err != nil {
				return err
			}
			if len(toks) > 0 {
				return sendTokens(ctx, tokens, toks, p.errSource())
			}
			return nil
		}
		if readErr != nil {
			return csverr.Wrap(csverr.DecodeError, "reading input", readErr).WithSource(p.errSource())
		}
	}
}

func sendTokens(ctx context.Context, tokens chan<- []token.Field, toks []token.Field, source string) error {
	select {
	case tokens <- toks:
		return nil
	case <-ctx.Done():
		return csverr.Wrap(csverr.Cancelled, "pipeline cancelled", ctx.Err()).WithSource(source)
	}
}

// feedAssembler drains tokens, assembles Records, and pushes Results onto
// out. A full out channel blocks this goroutine, propagating backpressure
// from a slow consumer all the way back to feedLexer's reads.
func (p *Pipeline) feedAssembler(ctx context.Context, tokens <-chan []token.Field, out chan<- Result) error {
	asm, err := assembler.New(p.opts.Assembler)
	if err != nil {
		return err
	}

	for {
		select {
		case toks, ok := <-tokens:
			if !ok {
				recs, err := asm.Flush()
				if err != nil {
					return err
				}
				return sendRecords(ctx, out, recs, p.errSource())
			}
			recs, err := asm.Feed(toks)
			if err != nil {
				return err
			}
			if err := sendRecords(ctx, out, recs, p.errSource()); err != nil {
				return err
			}
		case <-ctx.Done():
			return csverr.Wrap(csverr.Cancelled, "pipeline cancelled", ctx.Err()).WithSource(p.errSource())
		}
	}
}

func sendRecords(ctx context.Context, out chan<- Result, recs []assembler.Record, source string) error {
	for _, rec := range recs {
		select {
		case out <- Result{Record: rec}:
		case <-ctx.Done():
			return csverr.Wrap(csverr.Cancelled, "pipeline cancelled", ctx.Err()).WithSource(source)
		}
	}
	return nil
}

func checkCancelled(ctx context.Context, source string) error {
	select {
	case <-ctx.Done():
		return csverr.Wrap(csverr.Cancelled, "pipeline cancelled", ctx.Err()).WithSource(source)
	default:
		return nil
	}
}
