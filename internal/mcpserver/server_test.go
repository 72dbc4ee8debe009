package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/laguz/internal/store"
	"github.com/starford/laguz/internal/testutil"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, _ := testutil.TestStore(t)
	return New(st), st
}

// callTool invokes a tool handler directly; mcp-go has no test helper
// for dispatching a call through the server.
func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "move_note":
		result, err = srv.moveNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "create_folder":
		result, err = srv.createFolder(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, st := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"body":   "Groceries\nmilk",
		"folder": "Errands",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}

	notes := st.Query("Groceries", "")
	if len(notes) != 1 {
		t.Fatalf("created note not findable, got %d matches", len(notes))
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{
		"id": notes[0].ID.String(),
	})
	if got := resultText(r); got != "Groceries\nmilk" {
		t.Errorf("read result = %q", got)
	}
}

func TestListNotes_FolderFilter(t *testing.T) {
	srv, st := testServer(t)
	n := st.AddNote("Projects")
	_ = st.UpdateNote(n.ID, "Roadmap\nQ4 items", nil)

	r := callTool(t, srv, "list_notes", map[string]interface{}{"folder": "Projects"})
	text := resultText(r)
	if !strings.Contains(text, "Roadmap") {
		t.Errorf("list result missing note: %q", text)
	}
	if !strings.Contains(text, n.ID.String()) {
		t.Errorf("list result missing id: %q", text)
	}
}

func TestSearchNotes(t *testing.T) {
	srv, st := testServer(t)
	n := st.AddNote("")
	_ = st.UpdateNote(n.ID, "Recipe\ncarbonara with guanciale", nil)

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "GUANCIALE"})
	if !strings.Contains(resultText(r), n.ID.String()) {
		t.Errorf("search result = %q", resultText(r))
	}

	r = callTool(t, srv, "search_notes", map[string]interface{}{})
	if !r.IsError {
		t.Error("search without query must be an error")
	}
}

func TestUpdateNote(t *testing.T) {
	srv, st := testServer(t)
	n := st.AddNote("")

	r := callTool(t, srv, "update_note", map[string]interface{}{
		"id":   n.ID.String(),
		"body": "rewritten",
	})
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(r))
	}
	got, _ := st.GetNote(n.ID)
	if got.Body != "rewritten" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestUpdateNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "update_note", map[string]interface{}{
		"id":   uuid.NewString(),
		"body": "x",
	})
	if !r.IsError {
		t.Error("expected error for unknown note")
	}
}

func TestMoveNote(t *testing.T) {
	srv, st := testServer(t)
	n := st.AddNote("")

	r := callTool(t, srv, "move_note", map[string]interface{}{
		"id":     n.ID.String(),
		"folder": "Archive",
	})
	if r.IsError {
		t.Fatalf("move failed: %s", resultText(r))
	}
	got, _ := st.GetNote(n.ID)
	if got.Folder != "Archive" {
		t.Errorf("folder = %q", got.Folder)
	}

	r = callTool(t, srv, "move_note", map[string]interface{}{
		"id":     n.ID.String(),
		"folder": "A\nB",
	})
	if !r.IsError {
		t.Error("folder name containing a newline must be an error")
	}
}

func TestDeleteNote(t *testing.T) {
	srv, st := testServer(t)
	n := st.AddNote("")

	r := callTool(t, srv, "delete_note", map[string]interface{}{"id": n.ID.String()})
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}
	if st.Has(n.ID) {
		t.Error("note still present after delete")
	}
}

func TestCreateFolder(t *testing.T) {
	srv, st := testServer(t)

	r := callTool(t, srv, "create_folder", map[string]interface{}{"name": "Reading"})
	if r.IsError {
		t.Fatalf("create_folder failed: %s", resultText(r))
	}
	found := false
	for _, f := range st.Folders() {
		if f == "Reading" {
			found = true
		}
	}
	if !found {
		t.Error("folder not created")
	}

	r = callTool(t, srv, "create_folder", map[string]interface{}{"name": "   "})
	if !r.IsError {
		t.Error("blank folder name must be an error")
	}

	r = callTool(t, srv, "create_folder", map[string]interface{}{"name": "A\nB"})
	if !r.IsError {
		t.Error("folder name containing a newline must be an error")
	}
}

func TestInvalidID(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "not-a-uuid"})
	if !r.IsError {
		t.Error("expected error for malformed id")
	}
}

func TestNoteFormatResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("expected text resource contents")
	}
	if !strings.Contains(tc.Text, "folder:") {
		t.Error("contract must describe the folder header line")
	}
}
