package memory

import "github.com/custodia-labs/sheetlink/internal/core/domain"

// Sample table IDs.
const (
	SampleBudgetID = "table_1"
	SampleInfoID   = "table_2"
)

// SampleTables returns two linked demo tables. Budget sums its costs and
// applies the tax rate held by Info; Info links back to Budget.
func SampleTables() []domain.TableDefinition {
	return []domain.TableDefinition{
		{
			ID:   SampleBudgetID,
			Name: "Budget",
			Cells: []domain.CellDefinition{
				sampleValue("c1", 1, 1, "Item"),
				sampleValue("c2", 1, 2, "Cost"),
				sampleValue("c3", 2, 1, "Rent"),
				sampleValue("c4", 2, 2, 1000.0),
				sampleValue("c5", 3, 1, "Food"),
				sampleValue("c6", 3, 2, 500.0),
				sampleValue("c7", 4, 1, "Total"),
				sampleFormula("c8", 4, 2, "=SUM(B2:B3)", domain.FormatCurrency),
				sampleValue("c9", 5, 1, "Link to Info"),
				sampleLink("c10", 5, 2, SampleInfoID, "A1"),
				sampleValue("c11", 6, 1, "Tax"),
				sampleFormula("c12", 6, 2, "=B4*'Info'!B4", domain.FormatCurrency),
				sampleValue("c13", 7, 1, "Grand total"),
				sampleFormula("c14", 7, 2, "=ROUND(B4+B6, 2)", domain.FormatCurrency),
			},
		},
		{
			ID:   SampleInfoID,
			Name: "Info",
			Cells: []domain.CellDefinition{
				sampleValue("c2_1", 1, 1, "Important Info"),
				sampleValue("c2_2", 2, 1, "Details..."),
				sampleLink("c2_3", 3, 1, SampleBudgetID, "A1"),
				sampleValue("c2_4", 4, 1, "Tax rate"),
				{
					ID: "c2_5", Row: 4, Column: 2,
					Type: domain.CellTypeValue, Value: 0.2, Format: domain.FormatPercentage,
				},
				sampleValue("c2_6", 5, 1, "Over budget"),
				sampleFormula("c2_7", 5, 2, "=IF(table_1!B4>1000, 1, 0)", domain.FormatNumber),
			},
		},
	}
}

func sampleValue(id string, row, col int, v any) domain.CellDefinition {
	return domain.CellDefinition{ID: id, Row: row, Column: col, Type: domain.CellTypeValue, Value: v}
}

func sampleFormula(id string, row, col int, text string, format domain.FormatType) domain.CellDefinition {
	return domain.CellDefinition{
		ID: id, Row: row, Column: col,
		Type: domain.CellTypeFormula, Formula: text, Format: format,
	}
}

func sampleLink(id string, row, col int, tableID, addr string) domain.CellDefinition {
	return domain.CellDefinition{
		ID: id, Row: row, Column: col,
		Type:       domain.CellTypeLink,
		References: []domain.CellReference{{TableID: tableID, CellAddress: addr}},
	}
}
