package session

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"aether/internal/intent"
)

type fakeClock struct {
	times []time.Time
	i     int
}

func (c *fakeClock) Now() time.Time {
	t := c.times[c.i]
	if c.i < len(c.times)-1 {
		c.i++
	}
	return t
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestNew(t *testing.T) {
	s := New("gravity-escape", "baseline")
	if s.WorldID() != "gravity-escape" {
		t.Fatalf("unexpected world id %q", s.WorldID())
	}
	if s.CurrentStateID() != "baseline" {
		t.Fatalf("expected default state, got %q", s.CurrentStateID())
	}
	if s.Len() != 0 || len(s.Timeline()) != 0 {
		t.Fatalf("expected empty timeline")
	}
	if s.PendingText() != "" {
		t.Fatalf("expected empty pending text")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no current entry")
	}
}

func TestSetPendingText(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText("gravity")
	s.SetPendingText("")
	if s.PendingText() != "" {
		t.Fatalf("expected pending text to be replaced")
	}
	if s.Len() != 0 || s.CurrentStateID() != "baseline" {
		t.Fatalf("SetPendingText must not touch the timeline")
	}
}

func TestApplyIntent(t *testing.T) {
	s := New("w", "baseline", WithIDGenerator(sequentialIDs("entry")))

	s.SetPendingText("The gravity suddenly disappeared")
	entry, err := s.ApplyIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Sequence != 1 || entry.ID != "entry-1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.SourceText != "The gravity suddenly disappeared" {
		t.Fatalf("unexpected source text %q", entry.SourceText)
	}
	if s.Len() != 1 {
		t.Fatalf("expected one entry, got %d", s.Len())
	}
	if s.CurrentStateID() != entry.Result.TargetStateID || s.CurrentStateID() != intent.GravityStateID {
		t.Fatalf("unexpected current state %q", s.CurrentStateID())
	}
	if s.PendingText() == "" {
		t.Fatalf("pending text should survive apply")
	}

	s.SetPendingText("nothing special")
	entry, err = s.ApplyIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Sequence != 2 || s.Len() != 2 {
		t.Fatalf("expected sequence 2, got %d", entry.Sequence)
	}
	if s.CurrentStateID() != intent.BaselineStateID {
		t.Fatalf("expected baseline, got %q", s.CurrentStateID())
	}
}

func TestApplyIntentBlank(t *testing.T) {
	s := New("w", "start")
	for _, text := range []string{"", "   ", "\n\t "} {
		s.SetPendingText(text)
		_, err := s.ApplyIntent()
		if !errors.Is(err, ErrNothingToCompile) {
			t.Fatalf("expected ErrNothingToCompile for %q, got %v", text, err)
		}
		if s.Len() != 0 || s.CurrentStateID() != "start" {
			t.Fatalf("blank apply must not mutate the session")
		}
	}
}

func TestApplyIntentMonotonicCreatedAt(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{base, base.Add(-time.Minute), base.Add(time.Minute)}}
	s := New("w", "baseline", WithClock(clock.Now))

	var created []time.Time
	for i := 0; i < 3; i++ {
		s.SetPendingText(fmt.Sprintf("sword %d", i))
		entry, err := s.ApplyIntent()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		created = append(created, entry.CreatedAt)
	}
	if !created[1].Equal(base) {
		t.Fatalf("expected clock regression to be clamped, got %v", created[1])
	}
	if !created[2].Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected third timestamp %v", created[2])
	}
}

func TestApplyIntentUniqueIDs(t *testing.T) {
	s := New("w", "baseline")
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		s.SetPendingText("blade")
		entry, err := s.ApplyIntent()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[entry.ID]; dup {
			t.Fatalf("duplicate entry id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
}

func TestApplyIntentCustomCompiler(t *testing.T) {
	compiler := intent.NewCompiler([]intent.Rule{
		{TargetStateID: "rain", Keywords: []string{"rain"}, AffectedAnchors: []string{"Weather"}, Label: "Rain"},
	}, intent.Result{TargetStateID: "dry", Label: "Dry"})
	s := New("w", "dry", WithCompiler(compiler))

	s.SetPendingText("It started to rain")
	entry, err := s.ApplyIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Result.TargetStateID != "rain" {
		t.Fatalf("expected custom compiler to be used, got %q", entry.Result.TargetStateID)
	}
}

func TestSelectVersion(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText("gravity")
	first, _ := s.ApplyIntent()
	s.SetPendingText("sword")
	second, _ := s.ApplyIntent()

	selected, err := s.SelectVersion(first.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != first.ID {
		t.Fatalf("expected selected entry to be returned")
	}
	if s.CurrentStateID() != intent.GravityStateID {
		t.Fatalf("expected rollback to gravity, got %q", s.CurrentStateID())
	}
	if s.Len() != 2 {
		t.Fatalf("selection must not change the timeline length")
	}
	current, ok := s.Current()
	if !ok || current.ID != first.ID {
		t.Fatalf("expected current entry to follow the selection")
	}

	if _, err := s.SelectVersion(second.ID); err != nil {
		t.Fatalf("selecting a later entry should work: %v", err)
	}
	if s.CurrentStateID() != intent.SwordStateID {
		t.Fatalf("expected sword, got %q", s.CurrentStateID())
	}
}

func TestSelectVersionNotFound(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText("gravity")
	if _, err := s.ApplyIntent(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := s.SelectVersion("stale-id")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if s.CurrentStateID() != intent.GravityStateID || s.Len() != 1 {
		t.Fatalf("failed selection must not mutate the session")
	}
}

func TestTimelineIsCopy(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText("gravity")
	if _, err := s.ApplyIntent(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	timeline := s.Timeline()
	timeline[0].SourceText = "changed"
	timeline[0].Result.AffectedAnchors[0] = "changed"

	again := s.Timeline()
	if again[0].SourceText != "gravity" || again[0].Result.AffectedAnchors[0] != "GravityField" {
		t.Fatalf("timeline accessor leaked internal state: %+v", again[0])
	}
}

func TestEntryBySequence(t *testing.T) {
	s := New("w", "baseline")
	s.SetPendingText("gravity")
	first, _ := s.ApplyIntent()

	entry, ok := s.EntryBySequence(1)
	if !ok || entry.ID != first.ID {
		t.Fatalf("expected entry 1")
	}
	for _, seq := range []int{0, 2, -1} {
		if _, ok := s.EntryBySequence(seq); ok {
			t.Fatalf("expected no entry for sequence %d", seq)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := New("gravity-escape", "baseline")

	s.SetPendingText("突然，引力消失了")
	entry1, err := s.ApplyIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry1.Sequence != 1 || entry1.Result.TargetStateID != intent.GravityStateID {
		t.Fatalf("unexpected first entry: %+v", entry1)
	}
	if !reflect.DeepEqual(entry1.Result.AffectedAnchors, []string{"GravityField", "PhysicsEngine"}) {
		t.Fatalf("unexpected anchors %v", entry1.Result.AffectedAnchors)
	}

	s.SetPendingText("他拔出了长剑")
	entry2, err := s.ApplyIntent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry2.Sequence != 2 || entry2.Result.TargetStateID != intent.SwordStateID {
		t.Fatalf("unexpected second entry: %+v", entry2)
	}
	if !reflect.DeepEqual(entry2.Result.AffectedAnchors, []string{"WeaponImpulse", "CombatSystem"}) {
		t.Fatalf("unexpected anchors %v", entry2.Result.AffectedAnchors)
	}
	if s.CurrentStateID() != intent.SwordStateID {
		t.Fatalf("expected sword state, got %q", s.CurrentStateID())
	}

	if _, err := s.SelectVersion(entry1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentStateID() != intent.GravityStateID {
		t.Fatalf("expected gravity state after rollback, got %q", s.CurrentStateID())
	}
	if s.Len() != 2 {
		t.Fatalf("expected timeline length 2, got %d", s.Len())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	id := r.Create("w", "baseline")
	if r.Len() != 1 {
		t.Fatalf("expected one session")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Do(id, func(s *Session) error {
				s.SetPendingText("sword")
				_, err := s.ApplyIntent()
				return err
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	err := r.Do(id, func(s *Session) error {
		for i, entry := range s.Timeline() {
			if entry.Sequence != i+1 {
				return fmt.Errorf("entry %d has sequence %d", i, entry.Sequence)
			}
		}
		if s.Len() != 10 {
			return fmt.Errorf("expected 10 entries, got %d", s.Len())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("%v", err)
	}

	if err := r.Do("missing", func(*Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if !r.Remove(id) || r.Remove(id) {
		t.Fatalf("unexpected remove result")
	}
}

func TestRegistryPropagatesErrors(t *testing.T) {
	r := NewRegistry()
	id := r.Create("w", "baseline")
	err := r.Do(id, func(s *Session) error {
		_, err := s.ApplyIntent()
		return err
	})
	if !errors.Is(err, ErrNothingToCompile) {
		t.Fatalf("expected ErrNothingToCompile, got %v", err)
	}
	if strings.TrimSpace(id) == "" {
		t.Fatalf("expected a session id")
	}
}
