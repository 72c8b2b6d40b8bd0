// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the documentation catalogue and its notes via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docnotes/internal/apperr"
	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/session"
)

const noteKeysURI = "docnotes://note-keys"

// Server wraps the MCP server with docnotes tools.
type Server struct {
	mcp  *server.MCPServer
	sess *session.Session
}

// New creates a new MCP server with all tools registered.
func New(sess *session.Session, version string) *Server {
	s := &Server{sess: sess}

	s.mcp = server.NewMCPServer(
		"docnotes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_classes",
		mcp.WithDescription("Case-insensitive substring search over category and class names in the documentation tree."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Name fragment to look for")),
	), s.searchClasses)

	s.mcp.AddTool(mcp.NewTool("get_class",
		mcp.WithDescription("Return a class (properties, functions, nodes) together with its notes. "+
			"Accepts a class name or a tree path such as Category/Sub/MyClass."),
		mcp.WithString("class", mcp.Required(), mcp.Description("Class name or tree path")),
	), s.getClass)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally only those of one class. Orphaned notes are flagged."),
		mcp.WithString("class_id", mcp.Description("Optional class name to filter by")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read the note attached to one class member."),
		mcp.WithString("class_id", mcp.Required(), mcp.Description("Class name")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Property or function name, or node full title")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("set_note",
		mcp.WithDescription("Create or replace the note on a class member. Read the keying rules via the "+
			noteKeysURI+" resource first."),
		mcp.WithString("class_id", mcp.Required(), mcp.Description("Class name")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Property or function name, or node full title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Plain-text note content")),
	), s.setNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Remove the note on a class member. Removing a missing note is not an error."),
		mcp.WithString("class_id", mcp.Required(), mcp.Description("Class name")),
		mcp.WithString("item_id", mcp.Required(), mcp.Description("Property or function name, or node full title")),
	), s.deleteNote)

	s.mcp.AddResource(
		mcp.NewResource(noteKeysURI, "Note Keys",
			mcp.WithResourceDescription("How notes are keyed to catalogue members."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteKeysResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func noteKey(req mcp.CallToolRequest) (string, string, error) {
	classID, err := req.RequireString("class_id")
	if err != nil {
		return "", "", err
	}
	itemID, err := req.RequireString("item_id")
	if err != nil {
		return "", "", err
	}
	return classID, itemID, nil
}

type classHit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s *Server) searchClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items := s.sess.Catalog().Search(query)
	hits := make([]classHit, len(items))
	for i, it := range items {
		hits[i] = classHit{ID: it.ID, Name: it.Name, Path: it.Path}
	}
	return jsonResult(hits), nil
}

func (s *Server) getClass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("class")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c := s.sess.Catalog()
	item, ok := c.Class(ref)
	if !ok {
		item, ok = c.FindByPath(ref)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", ref)), nil
	}
	return jsonResult(struct {
		Item  *models.TreeItem `json:"item"`
		Notes []models.Note    `json:"notes"`
	}{item, s.sess.NotesForClass(item.ID)}), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classID := ""
	if c, err := req.RequireString("class_id"); err == nil {
		classID = c
	}
	if classID == "" {
		return jsonResult(s.sess.Notes()), nil
	}
	return jsonResult(s.sess.NotesForClass(classID)), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classID, itemID, err := noteKey(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.sess.Note(classID, itemID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", classID, itemID)), nil
	}
	return jsonResult(n), nil
}

func (s *Server) setNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classID, itemID, err := noteKey(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.sess.SetNote(ctx, classID, itemID, content)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrPersist):
		return mcp.NewToolResultError(fmt.Sprintf("saved in memory only: %v", err)), nil
	default:
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := fmt.Sprintf("saved: %s/%s", classID, itemID)
	if n.Orphan {
		msg += " (warning: no such member in the catalogue)"
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classID, itemID, err := noteKey(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	removed, err := s.sess.DeleteNote(ctx, classID, itemID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !removed {
		return mcp.NewToolResultText(fmt.Sprintf("no note at %s/%s", classID, itemID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s/%s", classID, itemID)), nil
}

func (s *Server) readNoteKeysResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteKeysURI,
			MIMEType: "text/markdown",
			Text:     NoteKeysContract,
		},
	}, nil
}
