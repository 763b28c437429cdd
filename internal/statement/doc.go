// Package statement reconstructs financial statements from semi-structured
// tabular exports.
//
// The input is a rectangular 2-D grid of already-resolved cell values, as
// produced by a tabular-document decoder. The parser detects the statement
// preamble (company name, title, accounting basis), locates the column
// header row, extracts and number-parses every data row, and rebuilds the
// statement's nesting hierarchy from "Total X" subtotal rows, since
// spreadsheet exports rarely encode indentation explicitly.
//
// Parsing is a pure function of the grid: the same grid always yields the
// same ParsedStatement, and no cell is ever coerced. Unparseable numeric
// cells stay nil so they remain visible in the data.
package statement
