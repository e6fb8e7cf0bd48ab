package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandwichlabs/mcp-config-extract/internal/extractor"
)

const ToolName = "extract_config"

// ExtractFunc runs one extraction. The CLI provides one backed by a real
// model; tests provide fakes.
type ExtractFunc func(ctx context.Context, readme string, m *extractor.Manifest) (*extractor.Output, error)

// NewExtractTool declares the extract_config tool.
func NewExtractTool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Extract MCP server configuration (command, args, env, capabilities) from a README and optional package.json."),
		mcp.WithString("readme", mcp.Required(), mcp.Description("README text of the server project")),
		mcp.WithString("package_json", mcp.Description("package.json contents, if the project has one")),
		mcp.WithString("format", mcp.Description("Output format: json (default) or yaml"), mcp.Enum(extractor.FormatJSON, extractor.FormatYAML)),
	)
}

func createExtractHandler(extract ExtractFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		readme, _ := args["readme"].(string)
		if strings.TrimSpace(readme) == "" {
			return mcp.NewToolResultError("readme is required"), nil
		}

		var manifest *extractor.Manifest
		if raw, _ := args["package_json"].(string); strings.TrimSpace(raw) != "" {
			m, err := extractor.ParseManifest([]byte(raw))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			manifest = m
		}
		format, _ := args["format"].(string)

		out, err := extract(ctx, readme, manifest)
		if err != nil {
			slog.Error("Extraction failed", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		var buf strings.Builder
		if err := extractor.Encode(&buf, out, format); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(strings.TrimSpace(buf.String())), nil
	}
}

// New builds the MCP server exposing the extraction tool.
func New(name, version string, extract ExtractFunc) *server.MCPServer {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest) {
		slog.Debug("beforeCallTool", "id", id, "tool", message.Params.Name)
	})
	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		slog.Debug("afterCallTool", "id", id, "tool", message.Params.Name, "is_error", result.IsError)
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		slog.Error("onError", "id", id, "method", method, "error", err)
	})

	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithHooks(hooks),
	)
	s.AddTool(NewExtractTool(), createExtractHandler(extract))
	return s
}

// Run serves the extraction tool over stdio until the client disconnects.
func Run(name, version string, extract ExtractFunc) error {
	s := New(name, version, extract)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("serving MCP: %w", err)
	}
	return nil
}
