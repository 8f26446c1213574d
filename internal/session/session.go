// Package session keeps the append-only history of applied intents for one
// editing session and the state id that is currently active.
//
// A Session has no internal locking. Callers that share a session between
// goroutines go through a Registry, which serializes access per session.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aether/internal/intent"
)

var (
	ErrNothingToCompile = errors.New("nothing to compile")
	ErrEntryNotFound    = errors.New("timeline entry not found")
)

type Entry struct {
	ID         string        `json:"id"`
	Sequence   int           `json:"sequence"`
	SourceText string        `json:"source_text"`
	Result     intent.Result `json:"result"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (e Entry) clone() Entry {
	e.Result = e.Result.Clone()
	return e
}

type Session struct {
	worldID        string
	currentStateID string
	currentEntryID string
	timeline       []Entry
	pendingText    string

	compiler     *intent.Compiler
	now          func() time.Time
	newID        func() string
	summaryLimit int
}

type Option func(*Session)

func WithCompiler(c *intent.Compiler) Option {
	return func(s *Session) {
		if c != nil {
			s.compiler = c
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Session) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithSummaryLimit bounds the shared summary, in code points. Values below
// one keep the default.
func WithSummaryLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.summaryLimit = limit
		}
	}
}

func New(worldID, defaultStateID string, opts ...Option) *Session {
	s := &Session{
		worldID:        worldID,
		currentStateID: defaultStateID,
		timeline:       []Entry{},
		compiler:       intent.Default(),
		now:            time.Now,
		newID:          uuid.NewString,
		summaryLimit:   DefaultSummaryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) WorldID() string        { return s.worldID }
func (s *Session) CurrentStateID() string { return s.currentStateID }
func (s *Session) PendingText() string    { return s.pendingText }
func (s *Session) Len() int               { return len(s.timeline) }

// Timeline returns a copy of the entries in sequence order.
func (s *Session) Timeline() []Entry {
	return cloneEntries(s.timeline)
}

// Current returns the entry the current state was taken from. It reports
// false while the session is still on its default state.
func (s *Session) Current() (Entry, bool) {
	if s.currentEntryID == "" {
		return Entry{}, false
	}
	entry, ok := s.find(s.currentEntryID)
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

func (s *Session) SetPendingText(text string) {
	s.pendingText = text
}

// ApplyIntent compiles the pending text and appends the result to the
// timeline. Blank pending text returns ErrNothingToCompile and leaves the
// session untouched.
func (s *Session) ApplyIntent() (Entry, error) {
	if strings.TrimSpace(s.pendingText) == "" {
		return Entry{}, ErrNothingToCompile
	}

	createdAt := s.now()
	if n := len(s.timeline); n > 0 && createdAt.Before(s.timeline[n-1].CreatedAt) {
		createdAt = s.timeline[n-1].CreatedAt
	}

	entry := Entry{
		ID:         s.newID(),
		Sequence:   len(s.timeline) + 1,
		SourceText: s.pendingText,
		Result:     s.compiler.Compile(s.pendingText),
		CreatedAt:  createdAt,
	}
	s.timeline = append(s.timeline, entry)
	s.currentStateID = entry.Result.TargetStateID
	s.currentEntryID = entry.ID

	return entry.clone(), nil
}

// SelectVersion rolls the current state back (or forward) to the state of an
// existing entry. The timeline is never truncated.
func (s *Session) SelectVersion(entryID string) (Entry, error) {
	entry, ok := s.find(entryID)
	if !ok {
		return Entry{}, fmt.Errorf("select version %q: %w", entryID, ErrEntryNotFound)
	}
	s.currentStateID = entry.Result.TargetStateID
	s.currentEntryID = entry.ID
	return entry.clone(), nil
}

// EntryBySequence looks an entry up by its 1-based sequence number.
func (s *Session) EntryBySequence(sequence int) (Entry, bool) {
	if sequence < 1 || sequence > len(s.timeline) {
		return Entry{}, false
	}
	return s.timeline[sequence-1].clone(), true
}

func (s *Session) find(entryID string) (Entry, bool) {
	for _, entry := range s.timeline {
		if entry.ID == entryID {
			return entry, true
		}
	}
	return Entry{}, false
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.clone())
	}
	return out
}
