package docpipe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "docpipe-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	pipe := New(Config{})
	srv := pipe.NewMCPServer(testMCPImpl)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

// WHAT: tool discovery over a full server built by NewMCPServer.
// WHY: NewMCPServer is the constructor the CLI serves over stdio; every
// pipeline tool must be advertised on it.
func TestMCP_ListTools(t *testing.T) {
	session := mcpSession(t)

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{"docpipe_extract": true, "docpipe_detect": true, "docpipe_formats": true}
	for _, tool := range res.Tools {
		if !want[tool.Name] {
			t.Errorf("unexpected tool: %q", tool.Name)
		}
		delete(want, tool.Name)
	}
	for name := range want {
		t.Errorf("missing tool: %q", name)
	}
}

// --- docpipe_formats ---

func TestMCP_Formats(t *testing.T) {
	session := mcpSession(t)

	text := mcpCallTool(t, session, "docpipe_formats", map[string]any{})

	var resp struct {
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	expected := map[string]bool{"csv": true, "pptx": true, "pdf": true, "md": true, "txt": true, "html": true}
	if len(resp.Formats) != len(expected) {
		t.Errorf("expected %d formats, got %d: %v", len(expected), len(resp.Formats), resp.Formats)
	}
	for _, f := range resp.Formats {
		if !expected[f] {
			t.Errorf("unexpected format: %q", f)
		}
		delete(expected, f)
	}
	for f := range expected {
		t.Errorf("missing format: %q", f)
	}
}

// --- docpipe_detect ---

func TestMCP_Detect(t *testing.T) {
	session := mcpSession(t)

	tests := []struct {
		path   string
		format string
	}{
		{"export.csv", "csv"},
		{"deck.pptx", "pptx"},
		{"readme.md", "md"},
		{"data.txt", "txt"},
		{"page.html", "html"},
		{"manual.pdf", "pdf"},
	}
	for _, tt := range tests {
		text := mcpCallTool(t, session, "docpipe_detect", map[string]any{"path": tt.path})
		var resp struct {
			Format string `json:"format"`
		}
		json.Unmarshal([]byte(text), &resp)
		if resp.Format != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.path, resp.Format, tt.format)
		}
	}
}

// --- docpipe_extract ---

func TestMCP_Extract_Text(t *testing.T) {
	session := mcpSession(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	os.WriteFile(path, []byte("Hello World\nSecond line"), 0644)

	text := mcpCallTool(t, session, "docpipe_extract", map[string]any{"path": path})

	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Format != FormatTXT {
		t.Errorf("Format = %q, want %q", doc.Format, FormatTXT)
	}
	if doc.RawText == "" {
		t.Error("expected non-empty RawText")
	}
}

func TestMCP_Extract_CSV(t *testing.T) {
	session := mcpSession(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	os.WriteFile(path, []byte("ligne;un\nligne;deux\n"), 0644)

	text := mcpCallTool(t, session, "docpipe_extract", map[string]any{"path": path})

	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Format != FormatCSV {
		t.Errorf("Format = %q, want %q", doc.Format, FormatCSV)
	}
	if doc.RawText != "ligne un\nligne deux" {
		t.Errorf("RawText = %q", doc.RawText)
	}
}

func TestMCP_Extract_MissingFile(t *testing.T) {
	session := mcpSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "docpipe_extract",
		Arguments: map[string]any{"path": filepath.Join(t.TempDir(), "absent.txt")},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	// CallToolResult.err is not marshaled; on the client side only the
	// IsError flag is visible.
	if !result.IsError {
		t.Fatal("expected tool error for missing file")
	}
}
