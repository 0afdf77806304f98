package csvengine

import (
	"github.com/shapestone/csv-engine/internal/assembler"
)

// AssemblerOptions configures an Assembler. Alias of assembler.Options.
type AssemblerOptions = assembler.Options

// OutputFormat selects object or array record shape.
type OutputFormat = assembler.OutputFormat

const (
	OutputObject = assembler.OutputObject
	OutputArray  = assembler.OutputArray
)

// ColumnCountStrategy names one of the six row/header length
// reconciliation policies.
type ColumnCountStrategy = assembler.ColumnCountStrategy

const (
	StrategyFill     = assembler.StrategyFill
	StrategyKeep     = assembler.StrategyKeep
	StrategyPad      = assembler.StrategyPad
	StrategySparse   = assembler.StrategySparse
	StrategyStrict   = assembler.StrategyStrict
	StrategyTruncate = assembler.StrategyTruncate
)

// DefaultAssemblerOptions returns the assembler's default configuration:
// inferred header, object output, the fill column-count strategy.
func DefaultAssemblerOptions() AssemblerOptions {
	return assembler.DefaultOptions()
}

// NewAssembler validates opts and constructs an Assembler (spec's Record
// Assembler module).
func NewAssembler(opts AssemblerOptions) (*assembler.Assembler, error) {
	return assembler.New(opts)
}
