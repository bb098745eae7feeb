// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TableSource: Fetches table definitions from the table service
//   - ConfigStore: Application configuration
//   - RendererFactory: Creates renderers for evaluated tables
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TableStore: Local cache of table definitions. Without it, every run
//     fetches from the source and there is no offline fallback.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, calc or formula package
package driven
