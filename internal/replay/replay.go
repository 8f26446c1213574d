// Package replay turns narrative scripts into shared snapshots. Each script
// is played through a fresh session and the result is saved to the store
// under a share id derived from the script's path and content, so replaying
// an unchanged script is a no-op.
package replay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"aether/internal/config"
	"aether/internal/intent"
	"aether/internal/parser"
	"aether/internal/session"
	"aether/internal/world"
)

const shareIDPrefix = "script-"

type Result struct {
	SnapshotsSaved    int
	SnapshotsReplaced int
	EntriesApplied    int
	FilesSkipped      int
	Shares            []Share
	Errors            []error
}

type Share struct {
	Path         string
	ShareID      string
	WorldID      string
	FinalStateID string
	Entries      int
}

type Options struct {
	// Full replays every script even when its snapshot is already stored.
	Full   bool
	Logger *log.Logger
	Clock  func() time.Time
}

func Run(ctx context.Context, cfg *config.ProjectConfig, compiler *intent.Compiler, catalog *world.Catalog, db Store, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	files, err := walkMarkdownFiles(cfg.Scripts.Paths, cfg.Scripts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking script files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		shareID := shareIDFor(path, data)

		if !options.Full {
			existing, err := db.GetSnapshot(ctx, shareID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("looking up %s: %w", path, err))
				continue
			}
			if existing != nil {
				logger.Debug("script unchanged", "path", path, "share_id", shareID)
				result.FilesSkipped++
				continue
			}
		}

		script, err := parser.Parse(data)
		if err != nil {
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingWorld) {
				logger.Debug("not a script", "path", path)
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		script.SourceFile = path

		snap, err := play(script, compiler, catalog, cfg.Share.SummaryLimit, options.Clock)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("replaying %s: %w", path, err))
			continue
		}
		snap.ShareID = shareID

		if options.Full {
			replaced, err := db.ReplaceSnapshot(ctx, snap)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("saving %s: %w", path, err))
				continue
			}
			if replaced {
				result.SnapshotsReplaced++
			}
		} else if err := db.SaveSnapshot(ctx, snap); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving %s: %w", path, err))
			continue
		}

		logger.Info("shared script", "path", path, "share_id", shareID, "world", snap.WorldID, "state", snap.FinalStateID)
		result.SnapshotsSaved++
		result.EntriesApplied += len(snap.Timeline)
		result.Shares = append(result.Shares, Share{
			Path:         path,
			ShareID:      shareID,
			WorldID:      snap.WorldID,
			FinalStateID: snap.FinalStateID,
			Entries:      len(snap.Timeline),
		})
	}

	return result, nil
}

func play(script *parser.Script, compiler *intent.Compiler, catalog *world.Catalog, summaryLimit int, clock func() time.Time) (session.SharedSnapshot, error) {
	w, ok := catalog.Get(script.WorldID)
	if !ok {
		return session.SharedSnapshot{}, fmt.Errorf("unknown world: %s", script.WorldID)
	}

	opts := []session.Option{session.WithCompiler(compiler), session.WithSummaryLimit(summaryLimit)}
	if clock != nil {
		opts = append(opts, session.WithClock(clock))
	}
	s := session.New(w.ID, w.DefaultClipID, opts...)

	for _, text := range script.Intents {
		s.SetPendingText(text)
		if _, err := s.ApplyIntent(); err != nil {
			return session.SharedSnapshot{}, err
		}
	}

	if script.Select > 0 {
		entry, ok := s.EntryBySequence(script.Select)
		if !ok {
			return session.SharedSnapshot{}, fmt.Errorf("select %d: %w", script.Select, session.ErrEntryNotFound)
		}
		if _, err := s.SelectVersion(entry.ID); err != nil {
			return session.SharedSnapshot{}, err
		}
	}

	return s.Snapshot(w.Name), nil
}

func shareIDFor(path string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(filepath.ToSlash(filepath.Clean(path))))
	h.Write([]byte{0})
	h.Write(data)
	return shareIDPrefix + hex.EncodeToString(h.Sum(nil))[:16]
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
