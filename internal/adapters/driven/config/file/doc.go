// Package file provides the TOML settings file.
//
// Keys are addressed in dot notation ("query.top_n") and stored as nested
// tables, so the file reads naturally when edited by hand:
//
//	[query]
//	top_n = 5
package file
