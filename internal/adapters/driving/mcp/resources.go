package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for sheetlink resources.
	uriScheme = "sheetlink://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tables",
		Name:        "tables",
		Description: "List of the tables that can be evaluated",
		MIMEType:    "application/json",
	}, s.handleTablesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tables/{tableId}",
		Name:        "evaluated-table",
		Description: "Evaluated cells of a table and the tables it links to",
		MIMEType:    "application/json",
	}, s.handleTableResource)
}

// handleTablesResource returns the table list.
func (s *Server) handleTablesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tables, err := s.ports.Tables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	infos := make([]TableOutput, len(tables))
	for i := range tables {
		infos[i] = TableOutput{ID: tables[i].ID, Name: tables[i].Name}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleTableResource returns the evaluation of one table.
func (s *Server) handleTableResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// sheetlink://tables/{tableId}
	tableID := extractTableID(req.Params.URI)
	if tableID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Workbook.Evaluate(ctx, tableID, s.opts)
	if err != nil {
		return nil, fmt.Errorf("evaluating table: %w", err)
	}
	return jsonResult(req.Params.URI, toEvaluateOutput(report, false))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTableID extracts the table ID from a URI like sheetlink://tables/{tableId}.
func extractTableID(uri string) string {
	const prefix = uriScheme + "tables/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
