// CLAUDE:SUMMARY MCP tool surface — extract/detect/formats exposed on an MCP server.
package docpipe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers docpipe tools on an MCP server.
//
// Tool errors are reported through result.SetError, never as JSON-RPC
// protocol errors. Arguments arrive as json.RawMessage in
// req.Params.Arguments.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerExtractTool(srv)
	p.registerDetectTool(srv)
	p.registerFormatsTool(srv)
}

// NewMCPServer builds an MCP server exposing the pipeline's tools. The
// caller picks the transport: stdio for the CLI, in-memory for tests.
func (p *Pipeline) NewMCPServer(impl *mcp.Implementation) *mcp.Server {
	srv := mcp.NewServer(impl, nil)
	p.RegisterMCP(srv)
	return srv
}

func inputSchema(properties map[string]any, required []string) json.RawMessage {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	data, _ := json.Marshal(s)
	return data
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func decodePathArgs(req *mcp.CallToolRequest) (pathArgs, error) {
	var args pathArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

func (p *Pipeline) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_extract",
		Description: "Extract structured content from a document file (csv, pptx, pdf, md, txt, html).",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to extract"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodePathArgs(req)
		if err != nil {
			return toolError(err), nil
		}
		doc, err := p.Extract(ctx, args.Path)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(doc)
	})
}

func (p *Pipeline) registerDetectTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_detect",
		Description: "Detect the format of a document file from its extension.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to detect"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodePathArgs(req)
		if err != nil {
			return toolError(err), nil
		}
		format, err := p.Detect(args.Path)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(map[string]any{"format": string(format)})
	})
}

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docpipe_formats",
		Description: "List all supported document formats.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolJSON(map[string]any{"formats": SupportedFormats()})
	})
}
