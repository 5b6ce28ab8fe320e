// Package viz renders results in the terminal: line charts of the first
// state component through asciigraph, and lipgloss-styled result tables.
//
// Output is plain text when stdout is not a terminal, so everything here is
// safe to pipe or to assert on in tests.
package viz
