// Package scripterr classifies failures raised while generating, parsing, and
// reconciling release documents.
//
// Every failure carries one of the exported sentinel kinds so callers can use
// errors.Is to decide how to report it, while the *Error value keeps the line,
// identifier, and path an author needs to fix the document.
package scripterr
