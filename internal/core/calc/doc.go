// Package calc holds the evaluation model: tables of cells, the formula
// cell state machine and the context that threads cycle detection through
// one evaluation run, across tables.
//
// A Table is built once from a domain.TableDefinition and never changes.
// Formula cells cache their result; Reset clears the cache of one cell and
// Table.Reset clears a whole table. Invalidating dependents is up to the
// caller.
//
// Evaluation is single threaded. An EvalContext must not be shared between
// goroutines, and two runs must not evaluate the same Table concurrently.
//
// # Import Rules
//
//   - Can Import: domain package, formula package
//   - Cannot Import: Any adapter, service or port package
package calc
