package board

import (
	"time"

	"huntboard/internal/models"
)

// Move is an optimistic status transition on a local copy of an application.
// The caller applies it immediately for a responsive view, attempts the
// remote write, then either Commit (keep) or Revert (restore the snapshot).
// The view is always fully moved or fully reverted, never half-way.
type Move struct {
	app        *models.Application
	prevStatus models.Status
	prevLen    int
	applied    bool
}

// NewMove snapshots the application's current status ahead of a transition
// to target. Applying a status equal to the current one is a no-op move:
// Apply changes nothing and Revert has nothing to restore.
func NewMove(app *models.Application) *Move {
	return &Move{
		app:        app,
		prevStatus: app.Status,
		prevLen:    len(app.StatusHistory),
	}
}

// Apply sets the new status locally, appending to the history exactly as the
// server will, so the optimistic view matches the eventual confirmed state.
func (m *Move) Apply(target models.Status) {
	if target == m.app.Status {
		return
	}
	m.app.StatusHistory = append(m.app.StatusHistory, models.StatusChange{
		Status: target,
		Date:   time.Now(),
	})
	m.app.Status = target
	m.applied = true
}

// Commit keeps the applied state. The server's response is authoritative;
// callers normally replace the local copy with it afterwards.
func (m *Move) Commit() {
	m.applied = false
}

// Revert restores the snapshot taken at NewMove. Safe to call when Apply
// never ran or after Commit; it only undoes a pending applied move.
func (m *Move) Revert() {
	if !m.applied {
		return
	}
	m.app.Status = m.prevStatus
	m.app.StatusHistory = m.app.StatusHistory[:m.prevLen]
	m.applied = false
}
