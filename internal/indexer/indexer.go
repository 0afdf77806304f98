package indexer

import (
	"bytes"
	"errors"

	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/lexer"
	"github.com/shapestone/csv-engine/internal/token"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// errFallbackToCPU signals runBackend's caller to hand the rest of the
// stream to the CPU lexer; it never escapes this package.
var errFallbackToCPU = errors.New("indexer: falling back to CPU lexer")

// Indexer is the GPU-Parallel Indexer's Go-side front end: same Feed/Flush
// shape as internal/lexer.Lexer (both emit unified token.Field streams),
// so internal/assembler consumes either's output unmodified, and the
// backend-equivalence property (spec §8.3) is a same-shape comparison.
//
// Not safe for concurrent feeding, like internal/lexer.
type Indexer struct {
	opts    Options
	backend Backend

	leftover   []byte
	inQuote    bool
	bomChecked bool
	pending    bool // true immediately after emitting a field-separator token
	flushed    bool
	reacquired bool // one DeviceLost re-acquire attempt has already run

	fallback *lexer.Lexer // non-nil once a fatal backend error is observed
}

// New constructs an Indexer backed by the CPU workgroup-simulation backend.
func New(opts Options) (*Indexer, error) {
	return NewWithBackend(opts, newCPUBackend())
}

// NewWithBackend constructs an Indexer against an explicit Backend, e.g. a
// Session's backend from a DevicePool, or a test double that injects
// BackendUnavailable/DeviceLost failures.
func NewWithBackend(opts Options, backend Backend) (*Indexer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ix := &Indexer{opts: opts, backend: backend}
	if !backend.Available() {
		if err := ix.beginFallback("BackendUnavailable"); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

func (ix *Indexer) beginFallback(reason string) error {
	if ix.opts.Strict {
		return csverr.New(csverr.BackendUnavailable, "indexer backend unavailable: "+reason).WithSource(ix.opts.Source)
	}
	if ix.opts.OnFallback != nil {
		ix.opts.OnFallback(reason)
	}
	lexOpts := lexer.DefaultOptions()
	lexOpts.Delimiter = string(ix.opts.Delimiter)
	lexOpts.Quotation = string(ix.opts.Quotation)
	lexOpts.MaxBufferSize = ix.opts.MaxBufferSize
	lexOpts.Source = ix.opts.Source
	ix.fallback = lexer.New(lexOpts)
	return nil
}

// Feed appends chunk and returns every token that can be unambiguously
// emitted, with the same stream/flush semantics as internal/lexer.Feed.
func (ix *Indexer) Feed(chunk []byte, stream bool) ([]token.Field, error) {
	if ix.flushed {
		return nil, csverr.New(csverr.InvalidOption, "indexer already flushed").WithSource(ix.opts.Source)
	}
	if !stream {
		ix.flushed = true
	}

	if ix.fallback != nil {
		return ix.fallback.Feed(chunk, stream)
	}

	if len(chunk) > 0 {
		if ix.opts.MaxBufferSize != Unbounded && len(ix.leftover)+len(chunk) > ix.opts.MaxBufferSize {
			return nil, csverr.New(csverr.BufferExceeded, "indexer buffer would exceed maxBufferSize").WithSource(ix.opts.Source)
		}
		ix.leftover = append(ix.leftover, chunk...)
	}

	if !ix.bomChecked {
		ix.bomChecked = true
		if ix.opts.IgnoreBOM && bytes.HasPrefix(ix.leftover, utf8BOM) {
			ix.leftover = ix.leftover[len(utf8BOM):]
		}
	}

	data := ix.leftover
	packed, _, err := ix.runBackend(data)
	if errors.Is(err, errFallbackToCPU) {
		if ferr := ix.beginFallback(fallbackReason(err)); ferr != nil {
			return nil, ferr
		}
		ix.leftover = nil
		return ix.fallback.Feed(data, stream)
	}
	if err != nil {
		return nil, err
	}

	toks, consumed := ix.assemble(data, packed, stream)
	if consumed > 0 {
		ix.leftover = append([]byte(nil), data[consumed:]...)
		ix.inQuote = false // record separators only occur outside a quoted region
	}
	return toks, nil
}

// Flush signals end of input, equivalent to Feed(nil, false).
func (ix *Indexer) Flush() ([]token.Field, error) {
	return ix.Feed(nil, false)
}

func fallbackReason(err error) string {
	var cerr *csverr.Error
	if errors.As(err, &cerr) {
		return cerr.Kind.String()
	}
	return "backend error"
}

// runBackend drives pass 1, the host prefix-XOR, and pass 2 over data. A
// DeviceLost failure gets one automatic re-acquire attempt (spec §4.4)
// before the caller is told to fall back to the CPU lexer.
func (ix *Indexer) runBackend(data []byte) (packed []uint32, endInQuote bool, err error) {
	packed, endInQuote, err = ix.tryBackend(data)
	if err == nil {
		return packed, endInQuote, nil
	}

	var cerr *csverr.Error
	if errors.As(err, &cerr) && cerr.Kind == csverr.DeviceLost && !ix.reacquired {
		ix.reacquired = true
		if packed, endInQuote, err2 := ix.tryBackend(data); err2 == nil {
			return packed, endInQuote, nil
		}
	}

	return nil, false, errFallbackToCPU
}

func (ix *Indexer) tryBackend(data []byte) ([]uint32, bool, error) {
	parity, err := ix.backend.Pass1(data, ix.opts.Quotation)
	if err != nil {
		return nil, false, err
	}
	entry := hostPrefix(parity, ix.inQuote)
	return ix.backend.Pass2(data, entry, ix.opts.Delimiter, ix.opts.Quotation)
}

// hostPrefix computes, per spec §4.4's "host prefix" step, the quote state
// entering each workgroup: an exclusive prefix XOR of the per-workgroup
// parities (workgroup i's own parity is not folded into entry[i]), seeded
// by the quote state carried in from the previous call.
func hostPrefix(parity []bool, seed bool) []bool {
	entry := make([]bool, len(parity))
	state := seed
	for i := range parity {
		entry[i] = state
		state = state != parity[i]
	}
	return entry
}

// assemble turns data's packed separators into unified field tokens,
// returning the number of bytes of data now fully committed. In streaming
// mode only separators up to and including the last record separator are
// committed; the remainder stays buffered as leftover, since a field or
// record straddling the end of data is not yet known to be complete.
func (ix *Indexer) assemble(data []byte, packed []uint32, stream bool) ([]token.Field, int) {
	seps := make([]Separator, len(packed))
	for i, w := range packed {
		seps[i] = unpack(w)
	}

	limit := len(seps)
	if stream {
		limit = -1
		for i := len(seps) - 1; i >= 0; i-- {
			if seps[i].Type == SepRecord {
				limit = i + 1
				break
			}
		}
		if limit == -1 {
			return nil, 0
		}
	}

	var out []token.Field
	cursor := 0
	for i := 0; i < limit; i++ {
		sep := seps[i]
		raw := data[cursor:int(sep.Offset)]
		value, trimmedCR := ix.decodeField(raw, sep.Type == SepRecord)

		follows := token.FollowsFieldSep
		sepLen := 1
		if sep.Type == SepRecord {
			follows = token.FollowsRecordSep
			if trimmedCR {
				sepLen = 2
			}
		}
		out = append(out, token.Field{Value: value, Follows: follows, SepLen: sepLen})
		ix.pending = sep.Type == SepField
		cursor = int(sep.Offset) + 1
	}

	if !stream {
		if cursor < len(data) || ix.pending || (len(seps) == 0 && len(data) > 0) {
			value, _ := ix.decodeField(data[cursor:], false)
			out = append(out, token.Field{Value: value, Follows: token.FollowsRecordSep, SepLen: 0})
			ix.pending = false
		}
		cursor = len(data)
	}
	return out, cursor
}

// decodeField strips a trailing CR from a record-terminated field and
// unescapes an outer quote pair, mirroring spec §4.4's host field assembly.
func (ix *Indexer) decodeField(raw []byte, isRecordSep bool) (string, bool) {
	trimmedCR := false
	if isRecordSep && len(raw) > 0 && raw[len(raw)-1] == '\r' {
		raw = raw[:len(raw)-1]
		trimmedCR = true
	}
	q := ix.opts.Quotation
	if len(raw) >= 2 && raw[0] == q && raw[len(raw)-1] == q {
		inner := raw[1 : len(raw)-1]
		unescaped := bytes.ReplaceAll(inner, []byte{q, q}, []byte{q})
		return string(unescaped), trimmedCR
	}
	return string(raw), trimmedCR
}
