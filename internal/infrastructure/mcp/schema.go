package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"
)

// SchemaVersion is the current MCP tool schema version (semver).
const SchemaVersion = "1.0.0"

// DeprecatedField records a field or tool that has been deprecated.
type DeprecatedField struct {
	Tool      string `json:"tool"`
	Field     string `json:"field"`
	Since     string `json:"since"`
	RemovedIn string `json:"removed_in"`
	Migration string `json:"migration"`
}

func deprecatedFields() []DeprecatedField {
	return []DeprecatedField{}
}

type schemaResponse struct {
	SchemaVersion string            `json:"schema_version"`
	ServerVersion string            `json:"server_version"`
	Tools         []string          `json:"tools"`
	Deprecated    []DeprecatedField `json:"deprecated"`
}

func (s *Server) toolNames() []string {
	tools := s.mcpServer.Tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}

func (s *Server) registerResources() {
	s.mcpServer.Resource("drafty://schema").
		Name("drafty://schema").
		Description("MCP tool schema version, tool list and deprecation info").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(schemaResponse{
				SchemaVersion: SchemaVersion,
				ServerVersion: Version,
				Tools:         s.toolNames(),
				Deprecated:    deprecatedFields(),
			})
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      "drafty://schema",
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})

	s.mcpServer.Resource("drafty://export.csv").
		Name("drafty://export.csv").
		Description("All parsed sheets as CSV").
		MimeType("text/csv").
		Handler(func(ctx context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			text, err := s.handleExportCSV(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      "drafty://export.csv",
				MimeType: "text/csv",
				Text:     text,
			}, nil
		})
}
