package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	base := time.Date(2025, 9, 1, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, daysBetween(base, base))
	assert.Equal(t, 3, daysBetween(base, base.AddDate(0, 0, 3)))
	assert.Equal(t, -3, daysBetween(base, base.AddDate(0, 0, -3)))

	// Clock time within the day is irrelevant: only the calendar date counts.
	morning := time.Date(2025, 9, 1, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2025, 9, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(morning, evening))
}

func TestMatchesOffset(t *testing.T) {
	t.Run("quote schedule", func(t *testing.T) {
		for _, days := range []int{3, 7, 14} {
			offset, ok := matchesOffset(quoteReminderOffsets, days)
			assert.True(t, ok, "day %d", days)
			assert.Equal(t, days, offset)
		}
		for _, days := range []int{0, 1, 2, 4, 13, 15} {
			_, ok := matchesOffset(quoteReminderOffsets, days)
			assert.False(t, ok, "day %d", days)
		}
	})

	t.Run("invoice schedule includes pre-due and due-day offsets", func(t *testing.T) {
		for _, days := range []int{-3, 0, 7, 14} {
			_, ok := matchesOffset(invoiceReminderOffsets, days)
			assert.True(t, ok, "day %d", days)
		}
		_, ok := matchesOffset(invoiceReminderOffsets, 3)
		assert.False(t, ok)
	})
}
