package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/callwriter/internal/providers"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSchedulerNextN(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	available := []time.Time{
		day(2026, 8, 28), // already expired
		day(2026, 9, 4),
		day(2026, 9, 11),
		day(2026, 9, 18),
		day(2026, 10, 16),
	}

	t.Run("takes first n future", func(t *testing.T) {
		s := Scheduler{Policy: PolicyNextN, MaxExpirations: 3}
		targets, err := s.TargetExpirations(available, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 9, 4), day(2026, 9, 11), day(2026, 9, 18)}, targets)
	})

	t.Run("zero max falls back to default", func(t *testing.T) {
		s := Scheduler{Policy: PolicyNextN}
		targets, err := s.TargetExpirations(available, now)
		require.NoError(t, err)
		assert.Len(t, targets, 4)
	})

	t.Run("fewer future than n", func(t *testing.T) {
		s := Scheduler{Policy: PolicyNextN, MaxExpirations: 10}
		targets, err := s.TargetExpirations(available, now)
		require.NoError(t, err)
		assert.Len(t, targets, 4)
	})

	t.Run("all expired falls back to latest", func(t *testing.T) {
		s := Scheduler{Policy: PolicyNextN, MaxExpirations: 3}
		stale := []time.Time{day(2026, 7, 17), day(2026, 8, 21)}
		targets, err := s.TargetExpirations(stale, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 8, 21)}, targets)
	})

	t.Run("today still counts as future", func(t *testing.T) {
		s := Scheduler{Policy: PolicyNextN, MaxExpirations: 1}
		targets, err := s.TargetExpirations([]time.Time{day(2026, 8, 30)}, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 8, 30)}, targets)
	})
}

func TestSchedulerThisWeekThenNext(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	s := Scheduler{Policy: PolicyThisWeekThenNext}

	t.Run("expiration inside the week plus the following", func(t *testing.T) {
		available := []time.Time{day(2026, 9, 4), day(2026, 9, 11), day(2026, 9, 18)}
		targets, err := s.TargetExpirations(available, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 9, 4), day(2026, 9, 11)}, targets)
	})

	t.Run("nothing inside the week uses earliest available", func(t *testing.T) {
		available := []time.Time{day(2026, 9, 18), day(2026, 10, 16)}
		targets, err := s.TargetExpirations(available, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 9, 18), day(2026, 10, 16)}, targets)
	})

	t.Run("single expiration yields one target", func(t *testing.T) {
		targets, err := s.TargetExpirations([]time.Time{day(2026, 9, 4)}, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 9, 4)}, targets)
	})
}

func TestSchedulerErrors(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	t.Run("no expirations is a no-data condition", func(t *testing.T) {
		s := Scheduler{Policy: PolicyNextN}
		_, err := s.TargetExpirations(nil, now)
		assert.ErrorIs(t, err, providers.ErrNoData)
	})

	t.Run("unknown policy rejected", func(t *testing.T) {
		s := Scheduler{Policy: "every_other_tuesday"}
		_, err := s.TargetExpirations([]time.Time{day(2026, 9, 4)}, now)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("empty policy defaults to next_n", func(t *testing.T) {
		s := Scheduler{MaxExpirations: 1}
		targets, err := s.TargetExpirations([]time.Time{day(2026, 9, 4), day(2026, 9, 11)}, now)
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2026, 9, 4)}, targets)
	})
}
