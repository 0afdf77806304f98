// Package assembler implements the Record Assembler of spec §4.2: a
// stateful aggregator that turns a token.Field stream into records,
// capturing or validating the header and applying one of six
// column-count policies.
//
// Grounded on the teacher's internal/parser/parser.go (FieldsPerRecord /
// BadLineMode header and field-count handling, generalized here into the
// six named strategies) and pkg/csv/dom.go (the Record/Document duality
// that Record's Get/GetByName API below is modeled on).
package assembler

import (
	"github.com/shapestone/csv-engine/internal/csverr"
)

// Unbounded is the sentinel for "no limit" (spec §9(c)).
const Unbounded = -1

// OutputFormat selects object or array record shape.
type OutputFormat string

const (
	OutputObject OutputFormat = "object"
	OutputArray  OutputFormat = "array"
)

// ColumnCountStrategy names one of the six row/header length reconciliation
// policies spec §4.2 defines.
type ColumnCountStrategy string

const (
	StrategyFill     ColumnCountStrategy = "fill"
	StrategyKeep     ColumnCountStrategy = "keep"
	StrategyPad      ColumnCountStrategy = "pad" // alias of fill
	StrategySparse   ColumnCountStrategy = "sparse"
	StrategyStrict   ColumnCountStrategy = "strict"
	StrategyTruncate ColumnCountStrategy = "truncate"
)

// Options configures an Assembler.
type Options struct {
	// Header: nil means infer from the first complete row consumed; a
	// non-nil empty slice means headerless mode (array output only); a
	// non-nil non-empty slice is an explicit header. Go's nil-vs-empty-slice
	// distinction stands in for the source spec's undefined-vs-[] split.
	Header []string

	OutputFormat        OutputFormat
	IncludeHeader       bool
	ColumnCountStrategy ColumnCountStrategy
	SkipEmptyLines      bool
	MaxFieldCount       int
	Source              string
}

// DefaultOptions returns the spec's default assembler configuration.
func DefaultOptions() Options {
	return Options{
		OutputFormat:        OutputObject,
		ColumnCountStrategy: StrategyFill,
		MaxFieldCount:       100000,
	}
}

func (o Options) headerless() bool {
	return o.Header != nil && len(o.Header) == 0
}

// Validate enforces spec §6's assembler construction-time rules.
func (o Options) Validate() error {
	if o.OutputFormat != OutputObject && o.OutputFormat != OutputArray {
		return csverr.New(csverr.InvalidOption, "outputFormat must be \"object\" or \"array\"")
	}
	switch o.ColumnCountStrategy {
	case StrategyFill, StrategyKeep, StrategyPad, StrategySparse, StrategyStrict, StrategyTruncate:
	default:
		return csverr.New(csverr.InvalidOption, "unknown columnCountStrategy")
	}
	if o.headerless() {
		if o.OutputFormat != OutputArray {
			return csverr.New(csverr.InvalidOption, "headerless mode (header=[]) requires array output")
		}
		if o.ColumnCountStrategy != StrategyKeep {
			return csverr.New(csverr.InvalidOption, "headerless mode only accepts the keep columnCountStrategy")
		}
	}
	if o.OutputFormat == OutputObject {
		switch o.ColumnCountStrategy {
		case StrategyKeep, StrategySparse:
			return csverr.New(csverr.InvalidOption, "object output does not allow keep or sparse columnCountStrategy")
		}
	}
	if o.ColumnCountStrategy == StrategySparse && o.Header == nil {
		return csverr.New(csverr.InvalidOption, "sparse columnCountStrategy requires an explicit header")
	}
	if o.IncludeHeader && o.OutputFormat != OutputArray {
		return csverr.New(csverr.InvalidOption, "includeHeader requires array output")
	}
	if o.MaxFieldCount != Unbounded && o.MaxFieldCount <= 0 {
		return csverr.New(csverr.InvalidOption, "maxFieldCount must be positive or Unbounded")
	}
	return nil
}
