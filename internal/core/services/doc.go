// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// WorkbookLoader gathers the tables one evaluation needs, WorkbookService
// runs the formula engine over them, TableService lists and fetches table
// definitions and SettingsService maps configuration keys onto typed
// settings.
//
// Services are pure Go with no CGO or external dependencies.
package services
