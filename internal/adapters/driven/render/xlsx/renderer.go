package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// Ensure Renderer and Factory implement the interfaces.
var (
	_ driven.Renderer        = (*Renderer)(nil)
	_ driven.RendererFactory = (*Factory)(nil)
)

// Built-in number formats.
const (
	numFmtCurrency   = 8  // $#,##0.00_);[Red]($#,##0.00)
	numFmtPercentage = 10 // 0.00%
	numFmtDate       = 14 // m/d/yy
	numFmtNumber     = 2  // 0.00
)

// ErrErrorCell is the text written to formula cells that failed evaluation.
const ErrErrorCell = "#ERROR!"

// ErrOutputLocked indicates another process is writing the same workbook.
var ErrOutputLocked = errors.New("output workbook is locked by another process")

// Factory creates xlsx renderers.
type Factory struct{}

// NewRenderer creates a renderer for output. An empty path falls back to
// domain.DefaultOutputPath.
func (Factory) NewRenderer(output domain.OutputSettings) (driven.Renderer, error) {
	return New(output)
}

// Renderer writes tables to one workbook file.
type Renderer struct {
	path          string
	writeFormulas bool
}

// New creates a renderer for output.
func New(output domain.OutputSettings) (*Renderer, error) {
	path := output.Path
	if path == "" {
		path = domain.DefaultOutputPath
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return nil, fmt.Errorf("%w: output %q must end in .xlsx", domain.ErrInvalidInput, path)
	}
	return &Renderer{path: path, writeFormulas: output.WriteFormulas}, nil
}

// Path returns the workbook path.
func (r *Renderer) Path() string {
	return r.path
}

// Render writes tables to the workbook, replacing any existing file.
func (r *Renderer) Render(ctx context.Context, tables []domain.RenderedTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("%w: no tables to render", domain.ErrInvalidInput)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	lock := flock.New(r.path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", r.path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrOutputLocked, r.path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	f := excelize.NewFile()
	defer f.Close()

	w, err := newWriter(f, r.writeFormulas)
	if err != nil {
		return err
	}
	if err := w.createSheets(tables); err != nil {
		return err
	}
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeTable(table); err != nil {
			return fmt.Errorf("write table %s: %w", table.ID, err)
		}
	}

	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("save %s: %w", r.path, err)
	}
	logger.Info("Wrote %d sheets to %s", len(tables), r.path)
	return nil
}

// writer holds the per-render state.
type writer struct {
	f             *excelize.File
	writeFormulas bool
	sheets        map[string]string
	styles        map[domain.FormatType]int
}

func newWriter(f *excelize.File, writeFormulas bool) (*writer, error) {
	w := &writer{
		f:             f,
		writeFormulas: writeFormulas,
		sheets:        make(map[string]string),
		styles:        make(map[domain.FormatType]int),
	}
	formats := []struct {
		format domain.FormatType
		numFmt int
	}{
		{domain.FormatNumber, numFmtNumber},
		{domain.FormatCurrency, numFmtCurrency},
		{domain.FormatPercentage, numFmtPercentage},
		{domain.FormatDate, numFmtDate},
	}
	for _, ft := range formats {
		id, err := f.NewStyle(&excelize.Style{NumFmt: ft.numFmt})
		if err != nil {
			return nil, fmt.Errorf("create %s style: %w", ft.format, err)
		}
		w.styles[ft.format] = id
	}
	return w, nil
}

// createSheets maps every table to a unique sheet. The default sheet is
// renamed for the first table so the root opens first.
func (w *writer) createSheets(tables []domain.RenderedTable) error {
	namer := newSheetNamer()
	for i, table := range tables {
		if _, dup := w.sheets[table.ID]; dup {
			continue
		}
		name := namer.next(table.Name, table.ID)
		w.sheets[table.ID] = name

		if i == 0 {
			if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
			continue
		}
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}
	w.f.SetActiveSheet(0)
	return nil
}

func (w *writer) writeTable(table domain.RenderedTable) error {
	sheet := w.sheets[table.ID]
	for _, c := range table.Cells {
		if err := w.writeCell(sheet, c); err != nil {
			return fmt.Errorf("cell %s: %w", c.Address, err)
		}
		if style, ok := w.styles[c.Format]; ok && c.Error == "" {
			if err := w.f.SetCellStyle(sheet, c.Address, c.Address, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) writeCell(sheet string, c domain.RenderedCell) error {
	switch c.Kind {
	case domain.CellKindReference:
		return w.writeReference(sheet, c)
	case domain.CellKindFormula:
		if c.Error != "" {
			if err := w.f.SetCellStr(sheet, c.Address, ErrErrorCell); err != nil {
				return err
			}
		} else if err := w.setValue(sheet, c); err != nil {
			return err
		}
		if w.writeFormulas && c.Formula != "" {
			return w.f.SetCellFormula(sheet, c.Address, strings.TrimPrefix(c.Formula, "="))
		}
		return nil
	default:
		return w.setValue(sheet, c)
	}
}

// writeReference writes a link as a formula into the target sheet.
func (w *writer) writeReference(sheet string, c domain.RenderedCell) error {
	tableID, addr, ok := strings.Cut(c.Target, "!")
	if !ok {
		return w.f.SetCellStr(sheet, c.Address, c.Display)
	}
	target, ok := w.sheets[tableID]
	if !ok {
		return w.f.SetCellStr(sheet, c.Address, "#REF!"+tableID)
	}
	return w.f.SetCellFormula(sheet, c.Address, quoteSheet(target)+"!"+addr)
}

func (w *writer) setValue(sheet string, c domain.RenderedCell) error {
	if c.Value == nil {
		return nil
	}
	return w.f.SetCellValue(sheet, c.Address, c.Value)
}
