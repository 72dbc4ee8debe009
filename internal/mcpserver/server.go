// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Laguz note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/store"
)

// Server wraps the MCP server with Laguz tools.
type Server struct {
	mcp *server.MCPServer
	st  *store.Store
}

// New creates a new MCP server with all Laguz tools registered.
func New(st *store.Store) *Server {
	s := &Server{st: st}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally restricted to one folder."),
		mcp.WithString("folder", mcp.Description("Optional folder name (empty for all folders)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive substring search across note titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithString("folder", mcp.Description("Optional folder name to search within")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full body of a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (UUID)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. The first line of the body becomes its title. "+
			"See the laguz://note-format resource for the on-disk contract."),
		mcp.WithString("body", mcp.Required(), mcp.Description("Note body text")),
		mcp.WithString("folder", mcp.Description("Optional folder (defaults to General)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the body of an existing note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (UUID)")),
		mcp.WithString("body", mcp.Required(), mcp.Description("New body text")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("move_note",
		mcp.WithDescription("Move a note to another folder, creating the folder if needed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (UUID)")),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Target folder name")),
	), s.moveNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (UUID)")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create an empty folder."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder name")),
	), s.createFolder)

	// Resource: on-disk note format contract.
	s.mcp.AddResource(
		mcp.NewResource("laguz://note-format", "Note File Format",
			mcp.WithResourceDescription("The flat-file format Laguz uses to persist notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type noteSummary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Folder  string `json:"folder"`
	Updated string `json:"updated_at"`
}

func summaries(st *store.Store, search, folder string) []noteSummary {
	notes := st.Query(search, folder)
	out := make([]noteSummary, len(notes))
	for i, n := range notes {
		out[i] = noteSummary{
			ID:      n.ID.String(),
			Title:   n.Title(),
			Folder:  n.Folder,
			Updated: n.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return out
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := optString(req, "folder")
	out, _ := json.MarshalIndent(summaries(s.st, "", folder), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := optString(req, "folder")
	out, _ := json.MarshalIndent(summaries(s.st, query, folder), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := s.requireID(req)
	if errRes != nil {
		return errRes, nil
	}
	n, err := s.st.GetNote(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(n.Body), nil
}

func (s *Server) createNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := optString(req, "folder")

	n := s.st.AddNote(folder)
	if err := s.st.UpdateNote(n.ID, body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %s in folder %q", n.ID, n.Folder)), nil
}

func (s *Server) updateNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := s.requireID(req)
	if errRes != nil {
		return errRes, nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.st.UpdateNote(id, body, nil); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated note %s", id)), nil
}

func (s *Server) moveNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := s.requireID(req)
	if errRes != nil {
		return errRes, nil
	}
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.st.MoveNote(id, folder); err != nil {
		if errors.Is(err, apperr.ErrBadFolder) {
			return mcp.NewToolResultError("invalid folder name"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved note %s to %q", id, folder)), nil
}

func (s *Server) deleteNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errRes := s.requireID(req)
	if errRes != nil {
		return errRes, nil
	}
	s.st.DeleteNote(id)
	return mcp.NewToolResultText(fmt.Sprintf("deleted note %s", id)), nil
}

func (s *Server) createFolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	created, ok := s.st.AddFolder(name)
	if !ok {
		return mcp.NewToolResultError("folder name is empty"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("folder %q exists", created)), nil
}

// optString reads an optional string argument, defaulting to empty.
func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func (s *Server) requireID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(err.Error())
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError(fmt.Sprintf("invalid note id: %s", raw))
	}
	return id, nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "laguz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFileContract,
		},
	}, nil
}
