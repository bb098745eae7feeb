// Package xlsx renders evaluated tables into an Excel workbook using
// excelize. Each table becomes one sheet; the root table comes first.
//
// Link cells are written as cross-sheet formulas ('Sheet'!A1) so the
// workbook stays live. Links to tables missing from the export become
// "#REF!<table_id>". The output path is guarded by a lock file while the
// workbook is written.
package xlsx
