package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"aether/internal/session"
	"aether/internal/store"
)

type CreateSessionInput struct {
	WorldID string `json:"world_id" jsonschema:"catalog world to edit"`
}

type SetPendingTextInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from create_session"`
	Text      string `json:"text" jsonschema:"narrative text to compile on the next apply"`
}

type ApplyIntentInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from create_session"`
	Text      string `json:"text,omitempty" jsonschema:"optional text that replaces the pending text before applying"`
}

type SelectVersionInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from create_session"`
	EntryID   string `json:"entry_id,omitempty" jsonschema:"timeline entry id"`
	Sequence  int    `json:"sequence,omitempty" jsonschema:"1-based timeline position, used when entry_id is empty"`
}

type GetSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from create_session"`
}

type CloseSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from create_session"`
}

type ShareSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session id from create_session"`
}

type GetSharedWorldInput struct {
	ShareID string `json:"share_id" jsonschema:"share id returned by share_session"`
}

type ListSharedWorldsInput struct {
	WorldID string `json:"world_id,omitempty" jsonschema:"restrict to one world"`
}

type SearchSharedWorldsInput struct {
	Query   string `json:"query" jsonschema:"search terms"`
	WorldID string `json:"world_id,omitempty" jsonschema:"restrict to one world"`
}

type EntryOutput struct {
	ID         string       `json:"id"`
	Sequence   int          `json:"sequence"`
	SourceText string       `json:"source_text"`
	Result     IntentOutput `json:"result"`
	CreatedAt  string       `json:"created_at"`
}

type SessionOutput struct {
	SessionID      string        `json:"session_id"`
	WorldID        string        `json:"world_id"`
	CurrentStateID string        `json:"current_state_id"`
	CurrentEntryID string        `json:"current_entry_id,omitempty"`
	CurrentClip    ClipOutput    `json:"current_clip"`
	PendingText    string        `json:"pending_text"`
	Timeline       []EntryOutput `json:"timeline"`
}

type ApplyIntentOutput struct {
	Applied bool          `json:"applied"`
	Entry   *EntryOutput  `json:"entry,omitempty"`
	Session SessionOutput `json:"session"`
}

type CloseSessionOutput struct {
	SessionID string `json:"session_id"`
	Closed    bool   `json:"closed"`
}

type SnapshotOutput struct {
	ShareID      string        `json:"share_id"`
	WorldID      string        `json:"world_id"`
	WorldName    string        `json:"world_name"`
	FinalStateID string        `json:"final_state_id"`
	FinalClip    ClipOutput    `json:"final_clip"`
	Summary      string        `json:"summary"`
	Timeline     []EntryOutput `json:"timeline"`
	CreatedAt    string        `json:"created_at"`
}

type SnapshotSummaryOutput struct {
	ShareID      string `json:"share_id"`
	WorldID      string `json:"world_id"`
	WorldName    string `json:"world_name"`
	FinalStateID string `json:"final_state_id"`
	Summary      string `json:"summary"`
	Entries      int    `json:"entries"`
	CreatedAt    string `json:"created_at"`
}

type ListSharedWorldsOutput struct {
	Shares []SnapshotSummaryOutput `json:"shares"`
}

type SearchResultOutput struct {
	ShareID   string  `json:"share_id"`
	WorldID   string  `json:"world_id"`
	WorldName string  `json:"world_name"`
	Score     float64 `json:"score"`
	Snippet   string  `json:"snippet"`
}

type SearchSharedWorldsOutput struct {
	Results []SearchResultOutput `json:"results"`
}

func (s *Server) handleCreateSession(ctx context.Context, req *sdk.CallToolRequest, input CreateSessionInput) (*sdk.CallToolResult, SessionOutput, error) {
	w, err := s.lookupWorld(input.WorldID)
	if err != nil {
		return nil, SessionOutput{}, err
	}

	id := s.sessions.Create(w.ID, w.DefaultClipID,
		session.WithCompiler(s.compiler),
		session.WithSummaryLimit(s.summaryLimit),
	)
	s.logger.Info("session created", "session_id", id, "world", w.ID)

	return s.readSession(id)
}

func (s *Server) handleSetPendingText(ctx context.Context, req *sdk.CallToolRequest, input SetPendingTextInput) (*sdk.CallToolResult, SessionOutput, error) {
	var out SessionOutput
	err := s.sessions.Do(input.SessionID, func(sess *session.Session) error {
		sess.SetPendingText(input.Text)
		out = s.sessionOutput(input.SessionID, sess)
		return nil
	})
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleApplyIntent(ctx context.Context, req *sdk.CallToolRequest, input ApplyIntentInput) (*sdk.CallToolResult, ApplyIntentOutput, error) {
	var out ApplyIntentOutput
	err := s.sessions.Do(input.SessionID, func(sess *session.Session) error {
		if input.Text != "" {
			sess.SetPendingText(input.Text)
		}
		entry, err := sess.ApplyIntent()
		switch {
		case errors.Is(err, session.ErrNothingToCompile):
		case err != nil:
			return err
		default:
			applied := entryOutput(entry)
			out.Applied = true
			out.Entry = &applied
			s.logger.Debug("intent applied", "session_id", input.SessionID, "state", entry.Result.TargetStateID)
		}
		out.Session = s.sessionOutput(input.SessionID, sess)
		return nil
	})
	if err != nil {
		return nil, ApplyIntentOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSelectVersion(ctx context.Context, req *sdk.CallToolRequest, input SelectVersionInput) (*sdk.CallToolResult, SessionOutput, error) {
	if input.EntryID == "" && input.Sequence == 0 {
		return nil, SessionOutput{}, fmt.Errorf("entry_id or sequence is required")
	}

	var out SessionOutput
	err := s.sessions.Do(input.SessionID, func(sess *session.Session) error {
		entryID := input.EntryID
		if entryID == "" {
			entry, ok := sess.EntryBySequence(input.Sequence)
			if !ok {
				return fmt.Errorf("sequence %d: %w", input.Sequence, session.ErrEntryNotFound)
			}
			entryID = entry.ID
		}
		if _, err := sess.SelectVersion(entryID); err != nil {
			return err
		}
		out = s.sessionOutput(input.SessionID, sess)
		return nil
	})
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleGetSession(ctx context.Context, req *sdk.CallToolRequest, input GetSessionInput) (*sdk.CallToolResult, SessionOutput, error) {
	return s.readSession(input.SessionID)
}

func (s *Server) handleCloseSession(ctx context.Context, req *sdk.CallToolRequest, input CloseSessionInput) (*sdk.CallToolResult, CloseSessionOutput, error) {
	if !s.sessions.Remove(input.SessionID) {
		return nil, CloseSessionOutput{}, fmt.Errorf("session %q: %w", input.SessionID, session.ErrSessionNotFound)
	}
	s.logger.Info("session closed", "session_id", input.SessionID)
	return nil, CloseSessionOutput{SessionID: input.SessionID, Closed: true}, nil
}

func (s *Server) handleShareSession(ctx context.Context, req *sdk.CallToolRequest, input ShareSessionInput) (*sdk.CallToolResult, SnapshotOutput, error) {
	var snap session.SharedSnapshot
	err := s.sessions.Do(input.SessionID, func(sess *session.Session) error {
		var name string
		if w, ok := s.catalog.Get(sess.WorldID()); ok {
			name = w.Name
		}
		snap = sess.Snapshot(name)
		return nil
	})
	if err != nil {
		return nil, SnapshotOutput{}, err
	}

	if err := s.db.SaveSnapshot(ctx, snap); err != nil {
		return nil, SnapshotOutput{}, fmt.Errorf("saving snapshot: %w", err)
	}
	s.logger.Info("world shared", "share_id", snap.ShareID, "world", snap.WorldID, "entries", len(snap.Timeline))

	return nil, s.snapshotOutput(snap), nil
}

func (s *Server) handleGetSharedWorld(ctx context.Context, req *sdk.CallToolRequest, input GetSharedWorldInput) (*sdk.CallToolResult, SnapshotOutput, error) {
	if strings.TrimSpace(input.ShareID) == "" {
		return nil, SnapshotOutput{}, fmt.Errorf("share_id is required")
	}
	snap, err := s.db.GetSnapshot(ctx, input.ShareID)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	if snap == nil {
		return nil, SnapshotOutput{}, fmt.Errorf("shared world not found")
	}
	return nil, s.snapshotOutput(*snap), nil
}

func (s *Server) handleListSharedWorlds(ctx context.Context, req *sdk.CallToolRequest, input ListSharedWorldsInput) (*sdk.CallToolResult, ListSharedWorldsOutput, error) {
	items, err := s.db.ListSnapshots(ctx, input.WorldID)
	if err != nil {
		return nil, ListSharedWorldsOutput{}, err
	}

	output := make([]SnapshotSummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, snapshotSummaryOutput(item))
	}
	return nil, ListSharedWorldsOutput{Shares: output}, nil
}

func (s *Server) handleSearchSharedWorlds(ctx context.Context, req *sdk.CallToolRequest, input SearchSharedWorldsInput) (*sdk.CallToolResult, SearchSharedWorldsOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchSharedWorldsOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.db.SearchSnapshots(ctx, input.Query, input.WorldID)
	if err != nil {
		return nil, SearchSharedWorldsOutput{}, err
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, result := range results {
		output = append(output, SearchResultOutput{
			ShareID:   result.ShareID,
			WorldID:   result.WorldID,
			WorldName: result.WorldName,
			Score:     result.Score,
			Snippet:   result.Snippet,
		})
	}
	return nil, SearchSharedWorldsOutput{Results: output}, nil
}

func (s *Server) readSession(id string) (*sdk.CallToolResult, SessionOutput, error) {
	var out SessionOutput
	err := s.sessions.Do(id, func(sess *session.Session) error {
		out = s.sessionOutput(id, sess)
		return nil
	})
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) sessionOutput(id string, sess *session.Session) SessionOutput {
	out := SessionOutput{
		SessionID:      id,
		WorldID:        sess.WorldID(),
		CurrentStateID: sess.CurrentStateID(),
		PendingText:    sess.PendingText(),
		Timeline:       entryOutputs(sess.Timeline()),
	}
	if current, ok := sess.Current(); ok {
		out.CurrentEntryID = current.ID
	}
	if w, ok := s.catalog.Get(sess.WorldID()); ok {
		out.CurrentClip = clipOutput(w.ResolveClip(sess.CurrentStateID()))
	}
	return out
}

func (s *Server) snapshotOutput(snap session.SharedSnapshot) SnapshotOutput {
	out := SnapshotOutput{
		ShareID:      snap.ShareID,
		WorldID:      snap.WorldID,
		WorldName:    snap.WorldName,
		FinalStateID: snap.FinalStateID,
		Summary:      snap.Summary,
		Timeline:     entryOutputs(snap.Timeline),
		CreatedAt:    formatTime(snap.CreatedAt),
	}
	if w, ok := s.catalog.Get(snap.WorldID); ok {
		out.FinalClip = clipOutput(w.ResolveClip(snap.FinalStateID))
	}
	return out
}

func entryOutput(entry session.Entry) EntryOutput {
	return EntryOutput{
		ID:         entry.ID,
		Sequence:   entry.Sequence,
		SourceText: entry.SourceText,
		Result:     intentOutput(entry.Result),
		CreatedAt:  formatTime(entry.CreatedAt),
	}
}

func entryOutputs(entries []session.Entry) []EntryOutput {
	out := make([]EntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entryOutput(entry))
	}
	return out
}

func snapshotSummaryOutput(item store.SnapshotSummary) SnapshotSummaryOutput {
	return SnapshotSummaryOutput{
		ShareID:      item.ShareID,
		WorldID:      item.WorldID,
		WorldName:    item.WorldName,
		FinalStateID: item.FinalStateID,
		Summary:      item.Summary,
		Entries:      item.Entries,
		CreatedAt:    formatTime(item.CreatedAt),
	}
}

// Timestamps cross the wire as RFC 3339 strings.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
