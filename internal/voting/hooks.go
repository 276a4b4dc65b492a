package voting

import (
	"time"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// Hooks receives operation events for metrics.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	VoteApplied(kind models.TargetKind, op LedgerOp)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) VoteApplied(models.TargetKind, LedgerOp)        {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
