package tui

import "errors"

// ErrMissingWorkbookService is returned when the workbook service is not provided.
var ErrMissingWorkbookService = errors.New("tui: workbook service is required")

// ErrMissingTableService is returned when the table service is not provided.
var ErrMissingTableService = errors.New("tui: table service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
