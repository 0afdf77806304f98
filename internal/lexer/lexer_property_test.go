package lexer

import (
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/shapestone/csv-engine/internal/token"
)

// csvLikeInput is a quick.Generator producing short strings drawn from an
// alphabet heavy on the bytes that matter to the lexer's state machine
// (delimiter, quotation, CR, LF) rather than uniform random bytes, so the
// generated corpus actually exercises quoting and separator edge cases.
type csvLikeInput string

func (csvLikeInput) Generate(rnd *rand.Rand, size int) reflect.Value {
	const alphabet = "ab,\"\r\n01"
	n := rnd.Intn(size + 1)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rnd.Intn(len(alphabet))]
	}
	return reflect.ValueOf(csvLikeInput(b))
}

// TestChunkBoundaryIndependenceProperty checks spec §8's chunk-boundary
// independence invariant across randomly generated inputs and split points,
// complementing TestChunkBoundaryIndependence's exhaustive sweep over one
// fixed input.
func TestChunkBoundaryIndependenceProperty(t *testing.T) {
	property := func(input csvLikeInput, splitSeed uint16) bool {
		s := string(input)
		whole := New(DefaultOptions())
		wholeTokens, err := whole.Feed([]byte(s), false)
		if err != nil {
			return true // inputs rejected outright are not this property's concern
		}

		splitAt := 0
		if len(s) > 0 {
			splitAt = int(splitSeed) % (len(s) + 1)
		}
		l := New(DefaultOptions())
		first, err := l.Feed([]byte(s[:splitAt]), true)
		if err != nil {
			return true
		}
		second, err := l.Feed([]byte(s[splitAt:]), false)
		if err != nil {
			return true
		}
		got := append(append([]token.Field{}, first...), second...)
		return equal(values(got), values(wholeTokens))
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}
