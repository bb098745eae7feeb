package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/sheetlink/internal/core/domain"
)

// tableSummaryDTO is one entry of the table listing.
type tableSummaryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// listResponseDTO is the wrapped form of the listing.
type listResponseDTO struct {
	Tables []tableSummaryDTO `json:"tables"`
}

// referenceDTO is a link target as sent by the service.
type referenceDTO struct {
	TableID     string `json:"table_id"`
	CellAddress string `json:"cell_address"`
	SheetName   string `json:"sheet_name,omitempty"`
}

// cellDTO is one cell as sent by the service. Links arrive under
// "reference"; "references" is accepted too.
type cellDTO struct {
	ID         string         `json:"id"`
	Row        int            `json:"row"`
	Column     int            `json:"column"`
	Value      any            `json:"value"`
	CellType   string         `json:"cell_type"`
	Formula    any            `json:"formula"`
	FormatType string         `json:"format_type"`
	Reference  []referenceDTO `json:"reference"`
	References []referenceDTO `json:"references"`
	Metadata   map[string]any `json:"metadata"`
}

// tableDTO is one table as sent by the service.
type tableDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Cells       []cellDTO      `json:"cells"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   *time.Time     `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
}

// decodeSummaries accepts both the wrapped and the bare listing.
func decodeSummaries(body []byte) ([]domain.TableSummary, error) {
	var items []tableSummaryDTO
	if err := json.Unmarshal(body, &items); err != nil {
		var wrapped listResponseDTO
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode table list: %w", err)
		}
		items = wrapped.Tables
	}

	out := make([]domain.TableSummary, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		out = append(out, domain.TableSummary(item))
	}
	return out, nil
}

func decodeTable(body []byte) (*domain.TableDefinition, error) {
	var dto tableDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	if dto.ID == "" {
		return nil, fmt.Errorf("decode table: %w: missing id", domain.ErrInvalidInput)
	}
	return dto.toDomain(), nil
}

func (t tableDTO) toDomain() *domain.TableDefinition {
	def := &domain.TableDefinition{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Metadata:    t.Metadata,
		Cells:       make([]domain.CellDefinition, 0, len(t.Cells)),
	}
	if t.CreatedAt != nil {
		def.CreatedAt = *t.CreatedAt
	}
	if t.UpdatedAt != nil {
		def.UpdatedAt = *t.UpdatedAt
	}
	for _, c := range t.Cells {
		def.Cells = append(def.Cells, c.toDomain())
	}
	return def
}

func (c cellDTO) toDomain() domain.CellDefinition {
	refs := c.Reference
	if len(refs) == 0 {
		refs = c.References
	}
	cell := domain.CellDefinition{
		ID:       c.ID,
		Row:      c.Row,
		Column:   c.Column,
		Type:     cellType(c.CellType),
		Value:    c.Value,
		Formula:  c.Formula,
		Format:   domain.FormatType(c.FormatType),
		Metadata: c.Metadata,
	}
	if !cell.Format.IsValid() {
		cell.Format = domain.FormatNone
	}
	for _, r := range refs {
		cell.References = append(cell.References, domain.CellReference(r))
	}
	return cell
}

// cellType maps the wire type. Unknown types are treated as value cells.
func cellType(s string) domain.CellType {
	switch ct := domain.CellType(s); ct {
	case domain.CellTypeValue, domain.CellTypeFormula, domain.CellTypeLink, domain.CellTypeEmpty:
		return ct
	default:
		return domain.CellTypeValue
	}
}
