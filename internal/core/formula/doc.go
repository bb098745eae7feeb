// Package formula implements the static analysis and the sandboxed
// interpreter behind formula cells.
//
// Extract scans formula text for cell, range and external references without
// evaluating anything. Evaluate interprets text whose references have already
// been replaced by literal values. The interpreter only understands a closed
// expression tree: numeric literals, arithmetic and comparison operators and
// a fixed allow-list of functions. There is no path from formula text to
// general-purpose evaluation.
//
// # Import Rules
//
//   - Can Import: domain package, github.com/xuri/efp, github.com/shopspring/decimal
//   - Cannot Import: Any adapter, service or calc package
package formula
