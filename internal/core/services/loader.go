package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sheetlink/internal/core/calc"
	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
	"github.com/custodia-labs/sheetlink/internal/logger"
)

// WorkbookLoader builds the workbook for one evaluation: the root table and
// every table reachable from it through link cells.
type WorkbookLoader struct {
	source driven.TableSource
	store  driven.TableStore
}

// NewWorkbookLoader creates a loader. The store is optional (can be nil);
// when set, fetched definitions are written through and used as a fallback
// when the source fails.
func NewWorkbookLoader(source driven.TableSource, store driven.TableStore) *WorkbookLoader {
	return &WorkbookLoader{
		source: source,
		store:  store,
	}
}

// Load fetches rootID and walks link cells breadth first. Each table is
// fetched once. A linked table that cannot be fetched or built is skipped
// and reported; failure of the root is an error.
func (l *WorkbookLoader) Load(ctx context.Context, rootID string) (*calc.Workbook, []string, error) {
	if rootID == "" {
		return nil, nil, fmt.Errorf("%w: table id is required", domain.ErrInvalidInput)
	}
	logger.Section("Load Workbook")

	workbook, err := calc.NewWorkbook()
	if err != nil {
		return nil, nil, err
	}

	var skipped []string
	queue := []string{rootID}
	seen := map[string]bool{rootID: true}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		id := queue[0]
		queue = queue[1:]

		table, err := l.table(ctx, id)
		if err != nil {
			if id == rootID {
				return nil, nil, fmt.Errorf("load table %s: %w", id, err)
			}
			logger.Warn("Skipping linked table %s: %v", id, err)
			skipped = append(skipped, id)
			continue
		}
		if err := workbook.Add(table); err != nil {
			return nil, nil, fmt.Errorf("add table %s: %w", id, err)
		}
		logger.Debug("Loaded table %s (%q, %d cells)", id, table.Name(), table.Len())

		for _, linked := range table.LinkedTableIDs() {
			if seen[linked] {
				continue
			}
			seen[linked] = true
			queue = append(queue, linked)
		}
	}

	logger.Info("Loaded %d tables, skipped %d", len(workbook.Tables()), len(skipped))
	return workbook, skipped, nil
}

func (l *WorkbookLoader) table(ctx context.Context, id string) (*calc.Table, error) {
	def, err := l.Definition(ctx, id)
	if err != nil {
		return nil, err
	}
	return calc.NewTable(*def)
}

// Definition fetches one definition from the source, writing it through
// to the store. When the source fails for any reason other than the table
// not existing, the cached copy is returned instead.
func (l *WorkbookLoader) Definition(ctx context.Context, id string) (*domain.TableDefinition, error) {
	def, err := l.source.GetTable(ctx, id)
	if err == nil {
		if l.store != nil {
			if saveErr := l.store.Save(ctx, *def); saveErr != nil {
				logger.Warn("Failed to cache table %s: %v", id, saveErr)
			}
		}
		return def, nil
	}

	if l.store == nil || errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
		return nil, err
	}
	cached, cacheErr := l.store.Get(ctx, id)
	if cacheErr != nil {
		return nil, err
	}
	logger.Warn("Using cached copy of table %s: %v", id, err)
	return cached, nil
}
