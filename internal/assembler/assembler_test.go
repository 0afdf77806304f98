package assembler

import (
	"errors"
	"testing"

	"github.com/shapestone/csv-engine/internal/csverr"
	"github.com/shapestone/csv-engine/internal/lexer"
	"github.com/shapestone/csv-engine/internal/token"
)

// tokenize runs the primary lexer over input and returns the unified field
// stream, failing the test on lexer error.
func tokenize(t *testing.T, input string) []token.Field {
	t.Helper()
	l := lexer.New(lexer.DefaultOptions())
	toks, err := l.Feed([]byte(input), false)
	if err != nil {
		t.Fatalf("lexer.Feed: %v", err)
	}
	return toks
}

func TestInferredHeaderObjectFill(t *testing.T) {
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2,h3\n1,2\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(recs), recs)
	}
	m := recs[0].Map()
	if m["h1"] != "1" || m["h2"] != "2" || m["h3"] != "" {
		t.Fatalf("unexpected map: %+v", m)
	}
}

func TestArrayFillPadsShortRow(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2,h3\n1,2\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	got := valuesOf(recs[0])
	want := []string{"1", "2", ""}
	if !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStrictRejectsMismatch(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategyStrict
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = a.Feed(tokenize(t, "h1,h2\n1,2,3\n"))
	var cerr *csverr.Error
	if !errors.As(err, &cerr) || cerr.Kind != csverr.ColumnCountMismatch {
		t.Fatalf("expected ColumnCountMismatch, got %v", err)
	}
}

func TestKeepArrayEmitsExactFieldCount(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategyKeep
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	got := valuesOf(recs[0])
	want := []string{"1", "2", "3", "4"}
	if !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSparseMarksAbsentCells(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategySparse
	opts.Header = []string{"a", "b", "c"}
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "1,2\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	fields := recs[0].Array()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if !fields[2].Present && fields[2].Value != "" {
		// absent cell carries the zero value, not an explicit empty string
	}
	if fields[2].Present {
		t.Fatalf("expected the third cell to be absent, got %+v", fields[2])
	}
	if !fields[0].Present || fields[0].Value != "1" {
		t.Fatalf("expected first cell present with value 1, got %+v", fields[0])
	}
}

func TestKeepWithObjectFormatRejectedAtConstruction(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputObject
	opts.ColumnCountStrategy = StrategyKeep
	_, err := New(opts)
	var cerr *csverr.Error
	if !errors.As(err, &cerr) || cerr.Kind != csverr.InvalidOption {
		t.Fatalf("expected InvalidOption, got %v", err)
	}
}

func TestHeaderlessRequiresArrayOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.Header = []string{}
	opts.OutputFormat = OutputObject
	_, err := New(opts)
	var cerr *csverr.Error
	if !errors.As(err, &cerr) || cerr.Kind != csverr.InvalidOption {
		t.Fatalf("expected InvalidOption, got %v", err)
	}
}

func TestHeaderlessKeepEmitsRawRows(t *testing.T) {
	opts := DefaultOptions()
	opts.Header = []string{}
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategyKeep
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "1,2\n3,4,5\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (no header row consumed), got %d", len(recs))
	}
	if !equalStrings(valuesOf(recs[0]), []string{"1", "2"}) {
		t.Fatalf("unexpected first record: %v", valuesOf(recs[0]))
	}
	if !equalStrings(valuesOf(recs[1]), []string{"3", "4", "5"}) {
		t.Fatalf("unexpected second record: %v", valuesOf(recs[1]))
	}
}

func TestEmptyHeaderRejected(t *testing.T) {
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = a.Feed(tokenize(t, "\n1,2\n"))
	var cerr *csverr.Error
	if !errors.As(err, &cerr) || cerr.Kind != csverr.EmptyHeader {
		t.Fatalf("expected EmptyHeader, got %v", err)
	}
}

func TestDuplicateHeaderRejected(t *testing.T) {
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = a.Feed(tokenize(t, "a,a\n1,2\n"))
	var cerr *csverr.Error
	if !errors.As(err, &cerr) || cerr.Kind != csverr.DuplicateHeader {
		t.Fatalf("expected DuplicateHeader, got %v", err)
	}
}

func TestSkipEmptyLines(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipEmptyLines = true
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2\n1,2\n\n3,4\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (the blank line skipped), got %d", len(recs))
	}
}

func TestMultipleEmptyFieldsAreNotAnEmptyLine(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipEmptyLines = true
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategyKeep
	opts.Header = []string{}
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, ",,\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("a row with multiple empty fields must not be treated as an empty line, got %d records", len(recs))
	}
}

func TestFieldCountExceeded(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxFieldCount = 2
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = a.Feed(tokenize(t, "a,b,c\n"))
	var cerr *csverr.Error
	if !errors.As(err, &cerr) || cerr.Kind != csverr.FieldCountExceeded {
		t.Fatalf("expected FieldCountExceeded, got %v", err)
	}
}

func TestTruncateArrayDropsExtraFields(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategyTruncate
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := []string{"1", "2"}
	if got := valuesOf(recs[0]); !equalStrings(got, want) {
		t.Fatalf("expected extras dropped, got %v, want %v", got, want)
	}
}

func TestTruncateArrayKeepsShortRowAsIs(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	opts.ColumnCountStrategy = StrategyTruncate
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2,h3\n1,2\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := []string{"1", "2"}
	if got := valuesOf(recs[0]); !equalStrings(got, want) {
		t.Fatalf("expected a short row left as-is, got %v, want %v", got, want)
	}
}

func TestTruncateObjectDropsExtraFields(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputObject
	opts.ColumnCountStrategy = StrategyTruncate
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	m := recs[0].Map()
	if len(m) != 2 || m["h1"] != "1" || m["h2"] != "2" {
		t.Fatalf("expected extras truncated to header width, got %+v", m)
	}
}

func TestTruncateObjectFillsShortRow(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputObject
	opts.ColumnCountStrategy = StrategyTruncate
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2,h3\n1,2\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	fields := recs[0].Array()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields padded to header width, got %d", len(fields))
	}
	if !fields[2].Present || fields[2].Value != "" {
		t.Fatalf("expected the missing cell filled present with an empty value, got %+v", fields[2])
	}
	m := recs[0].Map()
	if m["h1"] != "1" || m["h2"] != "2" || m["h3"] != "" {
		t.Fatalf("unexpected map: %+v", m)
	}
}

func TestIncludeHeaderEmitsHeaderRowFirst(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFormat = OutputArray
	opts.IncludeHeader = true
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := a.Feed(tokenize(t, "h1,h2\n1,2\n"))
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected header row + data row, got %d records", len(recs))
	}
	if !equalStrings(valuesOf(recs[0]), []string{"h1", "h2"}) {
		t.Fatalf("expected first record to be the header row, got %v", valuesOf(recs[0]))
	}
}

func valuesOf(r Record) []string {
	fields := r.Array()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Value
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
