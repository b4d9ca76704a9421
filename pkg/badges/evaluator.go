package badges

import (
	"time"

	"github.com/minigamehub/progress-engine/pkg/domain"
)

// Evaluator is the pure badge rule engine. Given stats already updated for
// an event, it returns the ids of not-yet-held badges that now qualify.
//
// Evaluation has no side effects and no I/O. For identical (stats, event)
// inputs the result is identical; the only clock dependency is the
// documented temporal rule set, fed by the injected now function.
type Evaluator struct {
	rules   []rule
	byID    map[domain.BadgeID]domain.Badge
	ordered []domain.Badge
	now     func() time.Time
}

// NewEvaluator builds an evaluator over the full catalog using the real
// wall clock.
func NewEvaluator() *Evaluator {
	return NewEvaluatorAt(time.Now)
}

// NewEvaluatorAt builds an evaluator with an injected clock. Tests use this
// to pin the temporal rules.
func NewEvaluatorAt(now func() time.Time) *Evaluator {
	rules := buildRules()
	byID := make(map[domain.BadgeID]domain.Badge, len(rules))
	ordered := make([]domain.Badge, 0, len(rules))
	for _, r := range rules {
		byID[r.badge.ID] = r.badge
		ordered = append(ordered, r.badge)
	}
	return &Evaluator{
		rules:   rules,
		byID:    byID,
		ordered: ordered,
		now:     now,
	}
}

// Evaluate returns the badge ids newly qualifying for the event, in catalog
// order. Already-held badges are never re-emitted.
func (e *Evaluator) Evaluate(stats *domain.UserStats, event domain.PlayEvent) []domain.BadgeID {
	now := e.now()
	var unlocked []domain.BadgeID
	for _, r := range e.rules {
		if stats.HasBadge(r.badge.ID) {
			continue
		}
		if r.qualifies(stats, event, now) {
			unlocked = append(unlocked, r.badge.ID)
		}
	}
	return unlocked
}

// Catalog returns every badge in catalog order.
func (e *Evaluator) Catalog() []domain.Badge {
	return e.ordered
}

// BadgeByID looks up a catalog entry.
func (e *Evaluator) BadgeByID(id domain.BadgeID) (domain.Badge, bool) {
	b, ok := e.byID[id]
	return b, ok
}

// BadgeProgress annotates one catalog entry with the user's state. Current
// and Target are zero for badges without a measurable progression
// (event-local and temporal rules).
type BadgeProgress struct {
	Badge    domain.Badge `json:"badge"`
	Unlocked bool         `json:"unlocked"`
	Current  int          `json:"current,omitempty"`
	Target   int          `json:"target,omitempty"`
}

// Progress returns the full catalog annotated against the given stats, in
// catalog order. This is the read model behind the badge page.
func (e *Evaluator) Progress(stats *domain.UserStats) []BadgeProgress {
	out := make([]BadgeProgress, 0, len(e.rules))
	for _, r := range e.rules {
		p := BadgeProgress{
			Badge:    r.badge,
			Unlocked: stats.HasBadge(r.badge.ID),
		}
		if r.progress != nil {
			current, target := r.progress(stats)
			if current > target {
				current = target
			}
			p.Current = current
			p.Target = target
		}
		out = append(out, p)
	}
	return out
}
