// Package domain defines the core business entities for sheetlink.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Address: A 1-based cell coordinate with spreadsheet bounds
//   - CellReference: A cross-table edge naming a cell of another table
//   - TableDefinition: The immutable input a table is built from
//   - RenderedTable: The evaluated output handed to renderers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
