package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/docnotes/internal/models"
	"github.com/starford/docnotes/internal/session"
	"github.com/starford/docnotes/internal/testutil"
)

func testServer(t *testing.T) (*Server, *session.Session) {
	t.Helper()
	sess, _ := testutil.Session(t, nil)
	return New(sess, "test"), sess
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct call helper; invoke the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_classes":
		result, err = srv.searchClasses(ctx, req)
	case "get_class":
		result, err = srv.getClass(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "set_note":
		result, err = srv.setNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
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

func TestSetAndGetNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "set_note", map[string]interface{}{
		"class_id": "CharacterMovement",
		"item_id":  "Jump",
		"content":  "Applies upward impulse.",
	})
	if text := resultText(r); text != "saved: CharacterMovement/Jump" {
		t.Errorf("set result = %q", text)
	}

	r = callTool(t, srv, "get_note", map[string]interface{}{
		"class_id": "CharacterMovement",
		"item_id":  "Jump",
	})
	var n models.Note
	if err := json.Unmarshal([]byte(resultText(r)), &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.Content != "Applies upward impulse." {
		t.Errorf("content = %q", n.Content)
	}
}

func TestSetNote_WarnsOnUnknownMember(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "set_note", map[string]interface{}{
		"class_id": "CharacterMovement",
		"item_id":  "Teleport",
		"content":  "x",
	})
	if !strings.Contains(resultText(r), "warning") {
		t.Errorf("expected orphan warning, got %q", resultText(r))
	}
}

func TestSetNote_MissingArgs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "set_note", map[string]interface{}{"class_id": "CharacterMovement"})
	if !r.IsError {
		t.Error("expected error for missing item_id")
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]interface{}{"class_id": "X", "item_id": "Y"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestDeleteNote(t *testing.T) {
	srv, sess := testServer(t)
	_ = callTool(t, srv, "set_note", map[string]interface{}{
		"class_id": "FlyingMovement", "item_id": "Lift", "content": "up",
	})

	r := callTool(t, srv, "delete_note", map[string]interface{}{"class_id": "FlyingMovement", "item_id": "Lift"})
	if text := resultText(r); text != "deleted: FlyingMovement/Lift" {
		t.Errorf("delete result = %q", text)
	}
	if len(sess.Notes()) != 0 {
		t.Error("note still present")
	}

	r = callTool(t, srv, "delete_note", map[string]interface{}{"class_id": "FlyingMovement", "item_id": "Lift"})
	if r.IsError {
		t.Error("deleting a missing note should not be an error")
	}
}

func TestListNotes(t *testing.T) {
	srv, _ := testServer(t)
	_ = callTool(t, srv, "set_note", map[string]interface{}{"class_id": "FlyingMovement", "item_id": "Lift", "content": "a"})
	_ = callTool(t, srv, "set_note", map[string]interface{}{"class_id": "CharacterMovement", "item_id": "Jump", "content": "b"})

	var all []models.Note
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_notes", map[string]interface{}{}))), &all)
	if len(all) != 2 {
		t.Errorf("all notes = %d, want 2", len(all))
	}

	var one []models.Note
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_notes", map[string]interface{}{"class_id": "FlyingMovement"}))), &one)
	if len(one) != 1 || one[0].ItemID != "Lift" {
		t.Errorf("filtered notes = %+v", one)
	}
}

func TestSearchClasses(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search_classes", map[string]interface{}{"query": "widget"})

	var hits []classHit
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 2 || hits[0].Name != "Widgets" || hits[1].Name != "WidgetLibrary" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestGetClass_ByNameAndPath(t *testing.T) {
	srv, _ := testServer(t)
	for _, ref := range []string{"WidgetLibrary", "UI/Widgets/WidgetLibrary"} {
		r := callTool(t, srv, "get_class", map[string]interface{}{"class": ref})
		if r.IsError {
			t.Fatalf("get_class %q failed: %s", ref, resultText(r))
		}
		if !strings.Contains(resultText(r), "Create Widget") {
			t.Errorf("get_class %q missing node title", ref)
		}
	}

	r := callTool(t, srv, "get_class", map[string]interface{}{"class": "Nope"})
	if !r.IsError {
		t.Error("expected error for unknown class")
	}
}

func TestNoteKeysResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readNoteKeysResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != noteKeysURI || !strings.Contains(tc.Text, "fullTitle") {
		t.Errorf("resource = %+v", contents[0])
	}
}
