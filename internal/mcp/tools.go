package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"aether/internal/intent"
	"aether/internal/world"
)

type CompileIntentInput struct {
	Text string `json:"text" jsonschema:"narrative text to classify"`
}

type ListWorldsInput struct{}

type GetRulesInput struct{}

type IntentOutput struct {
	TargetStateID   string   `json:"target_state_id"`
	AffectedAnchors []string `json:"affected_anchors"`
	Label           string   `json:"label"`
}

type ClipOutput struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	VideoURL    string `json:"video_url"`
	Description string `json:"description,omitempty"`
}

type PaletteOutput struct {
	Gradient string `json:"gradient"`
	Accent   string `json:"accent"`
	Color    string `json:"color"`
}

type WorldOutput struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Style         string        `json:"style"`
	Palette       PaletteOutput `json:"palette"`
	CoverImage    string        `json:"cover_image"`
	DefaultClipID string        `json:"default_clip_id"`
	Clips         []ClipOutput  `json:"clips"`
}

type ListWorldsOutput struct {
	Worlds []WorldOutput `json:"worlds"`
}

type RuleOutput struct {
	Target   string   `json:"target"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Anchors  []string `json:"anchors"`
}

type RulesOutput struct {
	Version       int          `json:"version"`
	BaselineID    string       `json:"baseline_target"`
	BaselineLabel string       `json:"baseline_label"`
	Rules         []RuleOutput `json:"rules"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "compile_intent",
		Description: "Classify narrative text into a world state without touching any session",
	}, s.handleCompileIntent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_worlds",
		Description: "List the worlds in the catalog with their clips and palette",
	}, s.handleListWorlds)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_rules",
		Description: "Return the intent rule table in priority order",
	}, s.handleGetRules)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_session",
		Description: "Start an editing session in a world",
	}, s.handleCreateSession)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "set_pending_text",
		Description: "Replace the text a session will compile next",
	}, s.handleSetPendingText)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "apply_intent",
		Description: "Compile the pending text and append it to the session timeline",
	}, s.handleApplyIntent)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "select_version",
		Description: "Make an earlier timeline entry the current state",
	}, s.handleSelectVersion)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_session",
		Description: "Return a session's current state, pending text and timeline",
	}, s.handleGetSession)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "close_session",
		Description: "Discard a session and its unshared timeline",
	}, s.handleCloseSession)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "share_session",
		Description: "Snapshot a session and store it under a new share id",
	}, s.handleShareSession)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_shared_world",
		Description: "Retrieve a shared snapshot by share id",
	}, s.handleGetSharedWorld)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_shared_worlds",
		Description: "List shared snapshots, newest first",
	}, s.handleListSharedWorlds)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_shared_worlds",
		Description: "Full-text search over the stories of shared snapshots",
	}, s.handleSearchSharedWorlds)
}

func (s *Server) handleCompileIntent(ctx context.Context, req *sdk.CallToolRequest, input CompileIntentInput) (*sdk.CallToolResult, IntentOutput, error) {
	return nil, intentOutput(s.compiler.Compile(input.Text)), nil
}

func (s *Server) handleListWorlds(ctx context.Context, req *sdk.CallToolRequest, input ListWorldsInput) (*sdk.CallToolResult, ListWorldsOutput, error) {
	worlds := s.catalog.List()
	output := make([]WorldOutput, 0, len(worlds))
	for _, w := range worlds {
		output = append(output, worldOutput(w))
	}
	return nil, ListWorldsOutput{Worlds: output}, nil
}

func (s *Server) handleGetRules(ctx context.Context, req *sdk.CallToolRequest, input GetRulesInput) (*sdk.CallToolResult, RulesOutput, error) {
	return nil, rulesOutput(s.rules.Version, s.compiler), nil
}

func (s *Server) lookupWorld(id string) (*world.World, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("world_id is required")
	}
	w, ok := s.catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("world not found: %s", id)
	}
	return w, nil
}

func intentOutput(result intent.Result) IntentOutput {
	return IntentOutput{
		TargetStateID:   result.TargetStateID,
		AffectedAnchors: append([]string{}, result.AffectedAnchors...),
		Label:           result.Label,
	}
}

func clipOutput(clip world.Clip) ClipOutput {
	return ClipOutput{
		ID:          clip.ID,
		Label:       clip.Label,
		VideoURL:    clip.VideoURL,
		Description: clip.Description,
	}
}

func worldOutput(w world.World) WorldOutput {
	palette := world.PaletteFor(w.Style)
	out := WorldOutput{
		ID:            w.ID,
		Name:          w.Name,
		Description:   w.Description,
		Style:         w.Style.String(),
		Palette:       PaletteOutput{Gradient: palette.Gradient, Accent: palette.Accent, Color: palette.Color},
		CoverImage:    w.CoverImage,
		DefaultClipID: w.DefaultClipID,
		Clips:         make([]ClipOutput, 0, len(w.Clips)),
	}
	for _, clip := range w.Clips {
		out.Clips = append(out.Clips, clipOutput(clip))
	}
	return out
}

func rulesOutput(version int, compiler *intent.Compiler) RulesOutput {
	baseline := compiler.Baseline()
	rules := compiler.Rules()
	out := RulesOutput{
		Version:       version,
		BaselineID:    baseline.TargetStateID,
		BaselineLabel: baseline.Label,
		Rules:         make([]RuleOutput, 0, len(rules)),
	}
	for _, rule := range rules {
		out.Rules = append(out.Rules, RuleOutput{
			Target:   rule.TargetStateID,
			Label:    rule.Label,
			Keywords: rule.Keywords,
			Anchors:  rule.AffectedAnchors,
		})
	}
	return out
}
