package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/fsutil"
)

// ExportVersion is the format version written by Export.
const ExportVersion = 1

// Export is the JSON document written by Store.Export.
type Export struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Sessions   []ExportedSession `json:"sessions"`
}

// ExportedSession is a session together with its phase changes.
type ExportedSession struct {
	SessionSummary
	Changes []core.PhaseChange `json:"changes"`
}

// Snapshot collects up to limit sessions (all when limit <= 0) with their
// phase changes.
func (s *Store) Snapshot(ctx context.Context, limit int) (*Export, error) {
	sessions, err := s.Sessions(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := &Export{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Sessions:   make([]ExportedSession, 0, len(sessions)),
	}
	for _, sum := range sessions {
		changes, err := s.Changes(ctx, sum.ID)
		if err != nil {
			return nil, err
		}
		if changes == nil {
			changes = []core.PhaseChange{}
		}
		out.Sessions = append(out.Sessions, ExportedSession{SessionSummary: sum, Changes: changes})
	}
	return out, nil
}

// Export writes the journal as JSON to path, replacing it atomically.
func (s *Store) Export(ctx context.Context, path string, limit int) (*Export, error) {
	snap, err := s.Snapshot(ctx, limit)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, append(data, '\n'), 0o600); err != nil {
		return nil, journalError("writing export", err)
	}
	return snap, nil
}

// ReadExport loads a document previously written by Export.
func ReadExport(path string) (*Export, error) {
	data, err := fsutil.ReadFileScoped(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if exp.Version != ExportVersion {
		return nil, core.ErrValidation(core.CodeInvalidConfig,
			fmt.Sprintf("unsupported export version %d", exp.Version))
	}
	return &exp, nil
}
