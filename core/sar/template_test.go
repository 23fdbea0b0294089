package sar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCriteria(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	criteria := NewCriteria(now)

	require.Len(t, criteria, 7)
	assert.Equal(t, 700, MaxOverallMarks(criteria))

	var sections int
	for i, c := range criteria {
		assert.Equal(t, i+1, c.CriteriaNumber)
		assert.Equal(t, 100, c.MaxMarks)
		assert.Equal(t, 100, c.TotalMarks)
		assert.Equal(t, 0, c.CompletedSections)

		var marks int
		for _, s := range c.Sections {
			assert.False(t, s.IsCompleted)
			assert.Empty(t, s.Content)
			require.NotNil(t, s.Attachments)
			assert.Equal(t, now, s.LastModified)
			marks += s.MaxMarks
		}
		assert.Equal(t, 100, marks, "criteria %d section marks", c.CriteriaNumber)
		sections += len(c.Sections)
	}
	assert.Equal(t, 27, sections) // criteria 2 has 3 sections, the rest 4

	// each call must yield independent section state
	other := NewCriteria(now)
	criteria[0].Sections[0].Content = "mutated"
	assert.Empty(t, other[0].Sections[0].Content)
}
