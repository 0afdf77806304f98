package csvengine

import (
	"github.com/shapestone/csv-engine/internal/lexer"
	"github.com/shapestone/csv-engine/internal/token"
)

// LexerOptions configures a Lexer. Alias of lexer.Options.
type LexerOptions = lexer.Options

// Token is one emitted field, carrying the value and what follows it.
// Alias of token.Field.
type Token = token.Field

// DefaultLexerOptions returns the lexer's default configuration: comma
// delimiter, double-quote quotation, 10MiB buffer and field caps.
func DefaultLexerOptions() LexerOptions {
	return lexer.DefaultOptions()
}

// NewLexer constructs the primary incremental lexer (spec's Lexer
// module). Feed chunks via Feed, retrieve the trailing token via Flush.
func NewLexer(opts LexerOptions) *lexer.Lexer {
	return lexer.New(opts)
}
