package tasks

import (
	"fmt"

	"github.com/desertthunder/catalogctl/internal/models"
)

// ProgressUpdate represents a progress event during a mutation or export.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	State   State  // Coordinator state after this update
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Confirm Phase = iota
	Submit
	Reload
	Propagate
	FetchCollection
	ExportCollection
)

func (p Phase) String() string {
	switch p {
	case Confirm:
		return "confirm"
	case Submit:
		return "submit"
	case Reload:
		return "reload"
	case Propagate:
		return "propagate"
	case FetchCollection:
		return "fetch_collection"
	case ExportCollection:
		return "export_collection"
	default:
		return ""
	}
}

func confirmUpdate(m Mutation) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Confirm,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Confirming delete of %s %q...", m.Type.Singular(), m.Label),
		State:   Idle,
	}
}

func submittingUpdate(m Mutation) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Submit,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Submitting %s %s...", m.Kind, m.Type.Singular()),
		State:   Submitting,
	}
}

func reloadingUpdate(t models.EntityType) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reload,
		Step:    2,
		Total:   3,
		Message: fmt.Sprintf("Reloading %s...", t),
		State:   Submitting,
	}
}

func propagatingUpdate(u models.User) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Propagate,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Updating session for %s...", u.Name),
		State:   Submitting,
		Data:    u,
	}
}

func outcomeUpdate(o Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Submit,
		Step:    3,
		Total:   3,
		Message: o.Message,
		State:   o.State,
		Data:    o,
	}
}

func fetchingCollectionUpdate(step, total int, t models.EntityType) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, t),
	}
}

func exportCompletedUpdate(step, total int, t models.EntityType, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d records)", step, total, t, count),
	}
}

func exportFailedUpdate(step, total int, t models.EntityType, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, t, err),
	}
}
