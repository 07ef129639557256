package analysis

import (
	"fmt"
	"time"

	"github.com/jwaldner/callwriter/internal/providers"
	"github.com/jwaldner/callwriter/internal/utils"
)

// SchedulerPolicy selects how target expirations are picked from the
// available list.
type SchedulerPolicy string

const (
	// PolicyNextN takes the first N expirations at or after today, falling
	// back to the single latest available when none are in the future.
	PolicyNextN SchedulerPolicy = "next_n"

	// PolicyThisWeekThenNext takes the earliest expiration inside the next
	// seven days (or the earliest available at all) plus the one after it.
	PolicyThisWeekThenNext SchedulerPolicy = "this_week_then_next"
)

const defaultMaxExpirations = 4

// Scheduler picks which expiration dates to analyze. It knows nothing about
// pricing; input is the provider's sorted ascending expiration list and the
// run's captured "now".
type Scheduler struct {
	Policy         SchedulerPolicy
	MaxExpirations int
}

// TargetExpirations returns the dates to analyze, in analysis order. A
// provider with zero expirations at all is a no-data condition; nothing is
// ever fabricated.
func (s Scheduler) TargetExpirations(available []time.Time, now time.Time) ([]time.Time, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("%w: no expirations available", providers.ErrNoData)
	}

	switch s.Policy {
	case PolicyThisWeekThenNext:
		return s.thisWeekThenNext(available, now), nil
	case PolicyNextN, "":
		return s.nextNFuture(available, now), nil
	default:
		return nil, fmt.Errorf("%w: unknown scheduler policy %q", ErrInvalidInput, s.Policy)
	}
}

func (s Scheduler) nextNFuture(available []time.Time, now time.Time) []time.Time {
	n := s.MaxExpirations
	if n <= 0 {
		n = defaultMaxExpirations
	}

	today := utils.Midnight(now)
	var future []time.Time
	for _, exp := range available {
		if !exp.Before(today) {
			future = append(future, exp)
		}
	}
	if len(future) == 0 {
		// Everything already expired; analyze the latest list entry so the
		// caller still sees the freshest chain that exists.
		return []time.Time{available[len(available)-1]}
	}
	if len(future) > n {
		future = future[:n]
	}
	return future
}

func (s Scheduler) thisWeekThenNext(available []time.Time, now time.Time) []time.Time {
	current := available[0]
	for _, exp := range available {
		if utils.WithinDays(exp, now, 7) {
			current = exp
			break
		}
	}

	targets := []time.Time{current}
	for _, exp := range available {
		if exp.After(current) {
			targets = append(targets, exp)
			break
		}
	}
	return targets
}
