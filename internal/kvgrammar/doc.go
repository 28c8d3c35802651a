// Package kvgrammar holds the lexical rules shared by the release document
// dialects: comment detection, quote-aware tokenization, brace handling,
// declarative field and section specs, and a bounded block parser for the
// root-block dialects.
package kvgrammar
