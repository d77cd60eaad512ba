package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/learning"
	"github.com/brightpost/draftforge/internal/store"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *mockGenerator) {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gen := &mockGenerator{
		draft: generator.Draft{
			ID:            "draft-1",
			UserID:        DefaultUserID,
			PostType:      "selling",
			PostText:      "Cashflow beats profit.",
			BestTimeLocal: "10:00",
		},
		meta: generator.Meta{Model: "gpt-4.1-mini", Attempts: 1},
	}

	return MCPDeps{
		Store:     st,
		Generator: gen,
		Learning:  &mockLearning{signals: learning.Signals{PreferredTone: "witty"}},
	}, gen
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPGenerateDraft(t *testing.T) {
	deps, gen := newTestMCPDeps(t)
	handler := mcpGenerateDraft(deps)

	result, err := handler(context.Background(), makeCallToolRequest("generate_draft", map[string]interface{}{
		"post_type": "selling",
		"tone":      "witty",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var resp DraftResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("decoding tool output: %v", err)
	}
	if resp.Draft.ID != "draft-1" {
		t.Errorf("draft id = %q", resp.Draft.ID)
	}
	if gen.lastReq.ToneOverride != "witty" {
		t.Errorf("tone not forwarded: %q", gen.lastReq.ToneOverride)
	}
	if gen.lastReq.UserID != DefaultUserID {
		t.Errorf("user defaulting failed: %q", gen.lastReq.UserID)
	}
}

func TestMCPGenerateDraftRequiresPostType(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpGenerateDraft(deps)

	result, err := handler(context.Background(), makeCallToolRequest("generate_draft", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing post_type")
	}
}

func TestMCPRecordFeedback(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	record := store.PostRecord{
		ID:        "post-1",
		UserID:    DefaultUserID,
		PostType:  "selling",
		Tone:      "witty",
		PostText:  "Cashflow beats profit.",
		CreatedAt: time.Now().UTC(),
	}
	if err := deps.Store.AddPostRecord(record); err != nil {
		t.Fatalf("seeding post record: %v", err)
	}

	handler := mcpRecordFeedback(deps)
	result, err := handler(context.Background(), makeCallToolRequest("record_feedback", map[string]interface{}{
		"post_id": "post-1",
		"rating":  "up",
		"note":    "nice hook",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	saved, err := deps.Store.RecentFeedbackByUser(DefaultUserID, 10)
	if err != nil {
		t.Fatalf("reading feedback: %v", err)
	}
	if len(saved) != 1 || saved[0].Tone != "witty" {
		t.Errorf("feedback not recorded with post context: %+v", saved)
	}
}

func TestMCPRecordFeedbackValidatesRating(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecordFeedback(deps)

	result, err := handler(context.Background(), makeCallToolRequest("record_feedback", map[string]interface{}{
		"post_id": "post-1",
		"rating":  "sideways",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for invalid rating")
	}
}

func TestMCPRecordFeedbackUnknownPost(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecordFeedback(deps)

	result, err := handler(context.Background(), makeCallToolRequest("record_feedback", map[string]interface{}{
		"post_id": "missing",
		"rating":  "down",
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unknown post")
	}
	if !strings.Contains(toolText(t, result), "not found") {
		t.Errorf("unexpected message: %s", toolText(t, result))
	}
}

func TestMCPLearningProfile(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpLearningProfile(deps)

	result, err := handler(context.Background(), makeCallToolRequest("learning_profile", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var signals learning.Signals
	if err := json.Unmarshal([]byte(toolText(t, result)), &signals); err != nil {
		t.Fatalf("decoding signals: %v", err)
	}
	if signals.PreferredTone != "witty" {
		t.Errorf("preferred tone = %q", signals.PreferredTone)
	}
}

func TestNewMCPServer(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if s := NewMCPServer(deps); s == nil {
		t.Fatal("nil server")
	}
}
