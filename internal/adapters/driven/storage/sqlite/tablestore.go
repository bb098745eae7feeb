package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
	"github.com/custodia-labs/sheetlink/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// tableStore implements driven.TableStore.
type tableStore struct {
	store *Store
}

var _ driven.TableStore = (*tableStore)(nil)

// cellRow is the stored JSON form of a cell.
type cellRow struct {
	ID         string                 `json:"id,omitempty"`
	Row        int                    `json:"row"`
	Column     int                    `json:"column"`
	Type       domain.CellType        `json:"cell_type"`
	Value      any                    `json:"value,omitempty"`
	Formula    any                    `json:"formula,omitempty"`
	Format     domain.FormatType      `json:"format_type,omitempty"`
	References []domain.CellReference `json:"reference,omitempty"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
}

// Save stores or replaces a definition.
func (s *tableStore) Save(ctx context.Context, def domain.TableDefinition) error {
	if def.ID == "" {
		return domain.ErrInvalidInput
	}

	rows := make([]cellRow, len(def.Cells))
	for i, c := range def.Cells {
		rows[i] = cellRow(c)
	}
	cellsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshalling cells: %w", err)
	}
	metadataJSON, err := json.Marshal(def.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO table_definitions (id, name, description, cells, metadata, created_at, updated_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			cells = excluded.cells,
			metadata = excluded.metadata,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			fetched_at = excluded.fetched_at
	`, def.ID, def.Name, def.Description, string(cellsJSON), string(metadataJSON),
		nullTime(def.CreatedAt), nullTime(def.UpdatedAt), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving table %s: %w", def.ID, err)
	}
	return nil
}

// Get retrieves a definition by table ID.
func (s *tableStore) Get(ctx context.Context, id string) (*domain.TableDefinition, error) {
	var (
		def                  domain.TableDefinition
		cellsJSON, metadata  string
		createdAt, updatedAt sql.NullTime
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, cells, metadata, created_at, updated_at
		FROM table_definitions WHERE id = ?
	`, id).Scan(&def.ID, &def.Name, &def.Description, &cellsJSON, &metadata, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting table %s: %w", id, err)
	}

	var rows []cellRow
	if err := json.Unmarshal([]byte(cellsJSON), &rows); err != nil {
		return nil, fmt.Errorf("unmarshalling cells: %w", err)
	}
	def.Cells = make([]domain.CellDefinition, len(rows))
	for i, r := range rows {
		def.Cells[i] = domain.CellDefinition(r)
	}
	if metadata != "" && metadata != jsonNull {
		if err := json.Unmarshal([]byte(metadata), &def.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		def.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		def.UpdatedAt = updatedAt.Time
	}
	return &def, nil
}

// List returns the cached tables ordered by name.
func (s *tableStore) List(ctx context.Context) ([]domain.TableSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name FROM table_definitions ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var out []domain.TableSummary
	for rows.Next() {
		var t domain.TableSummary
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a definition.
func (s *tableStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM table_definitions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting table %s: %w", id, err)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
