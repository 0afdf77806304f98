package assembler

import (
	"fmt"
	"sync"

	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/token"
)

// valuesPool recycles the per-row scratch []string that finalizeRow
// flattens token.Field values into. Adapted from the teacher's
// internal/fastparser/pool.go fieldPool; only returned to the pool when
// the row turns out not to become the captured header (which retains the
// slice as a.header).
var valuesPool = sync.Pool{
	New: func() interface{} {
		s := make([]string, 0, 8)
		return &s
	},
}

func getValues(n int) []string {
	p := valuesPool.Get().(*[]string)
	v := (*p)[:0]
	if cap(v) < n {
		v = make([]string, 0, n)
	}
	return v[:n]
}

func putValues(v []string) {
	const maxCapacity = 1024
	if cap(v) > maxCapacity {
		return
	}
	v = v[:0]
	valuesPool.Put(&v)
}

// Assembler turns a token.Field stream into Records. Not safe for
// concurrent feeding, mirroring internal/lexer.
type Assembler struct {
	opts Options

	header         []string
	headerCaptured bool
	rowNum         int

	buf []token.Field // fields accumulated for the row in progress
}

// New validates opts and constructs an Assembler.
func New(opts Options) (*Assembler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	a := &Assembler{opts: opts}
	switch {
	case opts.headerless():
		a.headerCaptured = true
	case opts.Header != nil:
		if err := validateHeader(opts.Header); err != nil {
			return nil, err
		}
		a.header = append([]string(nil), opts.Header...)
		a.headerCaptured = true
	}
	return a, nil
}

// validateHeader enforces spec §4.2's header invariants. A tokenized blank
// line never produces a literal zero-length field slice (it comes through
// as one empty-string field), so the "empty first row" case spec §9 open
// question (b) requires rejecting is detected as a single empty field, not
// just len(h)==0.
func validateHeader(h []string) error {
	if len(h) == 0 || (len(h) == 1 && h[0] == "") {
		return csverr.New(csverr.EmptyHeader, "header must have at least one non-empty field")
	}
	seen := make(map[string]struct{}, len(h))
	for _, name := range h {
		if _, dup := seen[name]; dup {
			return csverr.New(csverr.DuplicateHeader, fmt.Sprintf("duplicate header field %q", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Feed consumes tokens, returning every record that can be fully assembled.
func (a *Assembler) Feed(fields []token.Field) ([]Record, error) {
	var out []Record
	for _, f := range fields {
		a.buf = append(a.buf, f)
		if a.opts.MaxFieldCount != Unbounded && len(a.buf) > a.opts.MaxFieldCount {
			return out, csverr.New(csverr.FieldCountExceeded, "record field count exceeds maxFieldCount").
				WithSource(a.opts.Source).WithPosition(a.rowNum+1, 0, 0, 0)
		}
		if f.Follows == token.FollowsRecordSep {
			rec, emit, err := a.finalizeRow()
			if err != nil {
				return out, err
			}
			if emit {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// Flush finalizes a row left buffered without a trailing record-separator
// token. internal/lexer's Flush already marks the last field of a complete
// feed with FollowsRecordSep, so this is only exercised when the assembler
// is fed tokens from a source that does not make that guarantee.
func (a *Assembler) Flush() ([]Record, error) {
	if len(a.buf) == 0 {
		return nil, nil
	}
	rec, emit, err := a.finalizeRow()
	if err != nil {
		return nil, err
	}
	if emit {
		return []Record{rec}, nil
	}
	return nil, nil
}

func (a *Assembler) finalizeRow() (Record, bool, error) {
	values := getValues(len(a.buf))
	for i, f := range a.buf {
		values[i] = f.Value
	}
	a.buf = a.buf[:0]
	a.rowNum++

	if !a.headerCaptured {
		if err := validateHeader(values); err != nil {
			putValues(values)
			if cerr, ok := err.(*csverr.Error); ok {
				return Record{}, false, cerr.WithPosition(a.rowNum, 0, 0, 0).WithSource(a.opts.Source)
			}
			return Record{}, false, err
		}
		a.header = values // retained as the header; not returned to the pool
		a.headerCaptured = true
		if a.opts.OutputFormat == OutputArray && a.opts.IncludeHeader {
			return Record{header: a.header, fields: presentFields(values), format: OutputArray}, true, nil
		}
		return Record{}, false, nil
	}

	if a.opts.SkipEmptyLines && len(values) == 1 && values[0] == "" {
		putValues(values)
		return Record{}, false, nil
	}

	fields, err := a.applyStrategy(values)
	putValues(values)
	if err != nil {
		return Record{}, false, err
	}
	return Record{header: a.header, fields: fields, format: a.opts.OutputFormat}, true, nil
}

func (a *Assembler) applyStrategy(values []string) ([]Field, error) {
	h := len(a.header)
	f := len(values)

	switch a.opts.ColumnCountStrategy {
	case StrategyKeep:
		return presentFields(values), nil

	case StrategyFill, StrategyPad:
		out := make([]Field, h)
		for i := 0; i < h; i++ {
			if i < f {
				out[i] = Field{Value: values[i], Present: true}
			} else {
				out[i] = Field{Value: "", Present: true}
			}
		}
		return out, nil

	case StrategySparse:
		out := make([]Field, h)
		for i := 0; i < h; i++ {
			if i < f {
				out[i] = Field{Value: values[i], Present: true}
			}
		}
		return out, nil

	case StrategyStrict:
		if f != h {
			return nil, csverr.New(csverr.ColumnCountMismatch,
				fmt.Sprintf("row has %d fields, header has %d", f, h)).
				WithSource(a.opts.Source).WithPosition(a.rowNum, 0, 0, 0)
		}
		return presentFields(values), nil

	case StrategyTruncate:
		if a.opts.OutputFormat == OutputArray {
			if f > h {
				return presentFields(values[:h]), nil
			}
			return presentFields(values), nil
		}
		limit := f
		if limit > h {
			limit = h
		}
		out := make([]Field, h)
		for i := 0; i < h; i++ {
			if i < limit {
				out[i] = Field{Value: values[i], Present: true}
			} else {
				out[i] = Field{Value: "", Present: true}
			}
		}
		return out, nil

	default:
		return nil, csverr.New(csverr.InvalidOption, "unknown columnCountStrategy")
	}
}

func presentFields(values []string) []Field {
	out := make([]Field, len(values))
	for i, v := range values {
		out[i] = Field{Value: v, Present: true}
	}
	return out
}
