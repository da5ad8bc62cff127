// Package errors provides diagnostics for parsing Paradox-style data files.
//
// Parsing never fails on malformed text. Instead, the parser records what it
// recovered from as diagnostics that carry a source location, surrounding
// lines, and an optional suggestion.
//
// # Error Types
//
// ErrorTypeLexical: unterminated quoted strings
//
// ErrorTypeStructural: unbalanced braces, "=" with no value
//
// ErrorTypeSchema: condition keys unknown to a facet schema (lint only)
//
// ErrorTypeIO: file I/O errors, the only ones returned as Go errors
//
// # Error Format
//
//	[structural] Block opened here is never closed
//	  --> common/governments/civics/00_civics.txt:12:18
//	  |
//	   11 |
//	-> 12 | civic_example = {
//	      |                 ^
//	   13 |     potential = {
//	  |
//	  = suggestion: Add the missing '}'
package errors
