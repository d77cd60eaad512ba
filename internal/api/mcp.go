package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/store"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store     *store.Store
	Generator DraftGenerator
	Learning  SignalSource
}

// NewMCPServer creates an MCP server exposing draft generation, feedback
// capture, and the learning profile as tools over stdio.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"draftforge",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("draftforge generates LinkedIn-style post drafts tuned to a business profile and learns from thumbs feedback."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_draft",
			mcp.WithDescription("Generate a social media post draft for the configured business profile."),
			mcp.WithString("post_type", mcp.Description("One of: selling, information_advice, random, news"), mcp.Required()),
			mcp.WithString("tone", mcp.Description("Tone override, e.g. witty or professional")),
			mcp.WithString("note", mcp.Description("Free-form brief that takes priority over the profile")),
			mcp.WithString("original_post", mcp.Description("When set, refine this existing post instead of writing a new one")),
			mcp.WithString("user_id", mcp.Description("Profile owner (default: default)")),
		),
		mcpGenerateDraft(deps),
	)

	s.AddTool(
		mcp.NewTool("record_feedback",
			mcp.WithDescription("Record a thumbs up or down judgement on a previously generated draft."),
			mcp.WithString("post_id", mcp.Description("Draft ID returned by generate_draft"), mcp.Required()),
			mcp.WithString("rating", mcp.Description("\"up\" or \"down\""), mcp.Required()),
			mcp.WithString("note", mcp.Description("Optional comment on why")),
			mcp.WithString("user_id", mcp.Description("Profile owner (default: default)")),
		),
		mcpRecordFeedback(deps),
	)

	s.AddTool(
		mcp.NewTool("learning_profile",
			mcp.WithDescription("Return the learning signals derived from accumulated feedback: preferred and avoided terms, tone, confidence."),
			mcp.WithString("user_id", mcp.Description("Profile owner (default: default)")),
		),
		mcpLearningProfile(deps),
	)

	return s
}

func mcpGenerateDraft(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		postType, err := req.RequireString("post_type")
		if err != nil {
			return mcpError("post_type is required"), nil
		}

		genReq := generator.Request{
			UserID:       req.GetString("user_id", DefaultUserID),
			PostType:     postType,
			ToneOverride: req.GetString("tone", ""),
			Note:         req.GetString("note", ""),
			OriginalPost: req.GetString("original_post", ""),
		}

		draft, meta, err := deps.Generator.Generate(ctx, genReq)
		if err != nil {
			return mcpError(fmt.Sprintf("generation failed: %v", err)), nil
		}

		b, err := json.Marshal(DraftResponse{
			Draft: draft,
			Meta:  MetaPayload{Meta: meta, DurationMs: meta.Duration.Milliseconds()},
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal draft: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpRecordFeedback(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		postID, err := req.RequireString("post_id")
		if err != nil {
			return mcpError("post_id is required"), nil
		}
		rating, err := req.RequireString("rating")
		if err != nil {
			return mcpError("rating is required"), nil
		}
		if rating != store.RatingUp && rating != store.RatingDown {
			return mcpError(fmt.Sprintf("rating must be %q or %q", store.RatingUp, store.RatingDown)), nil
		}

		userID := req.GetString("user_id", DefaultUserID)

		record, err := deps.Store.GetPostRecord(postID)
		if err != nil {
			return mcpError(fmt.Sprintf("post %s not found", postID)), nil
		}

		fb := store.Feedback{
			ID:        uuid.New().String(),
			UserID:    userID,
			PostID:    postID,
			Rating:    rating,
			Note:      req.GetString("note", ""),
			PostType:  record.PostType,
			Tone:      record.Tone,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.AddFeedback(fb); err != nil {
			return mcpError(fmt.Sprintf("failed to save feedback: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Recorded %s feedback on %s", rating, postID)), nil
	}
}

func mcpLearningProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID := req.GetString("user_id", DefaultUserID)

		signals, err := deps.Learning.DeriveSignals(userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to derive signals: %v", err)), nil
		}

		b, err := json.Marshal(signals)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal signals: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
