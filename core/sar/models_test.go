package sar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoByTwo builds an application with 2 criteria of 2 sections each, all empty.
func twoByTwo() Application {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return Application{
		ID:            "app-1",
		ApplicationID: "RGUKT-CSE-20260901",
		InstitutionID: "inst-1",
		DepartmentID:  "CSE",
		Status:        StatusDraft,
		Criteria: []Criteria{
			{
				ID: "criteria-1", CriteriaNumber: 1, MaxMarks: 100, TotalMarks: 100,
				Sections: []Section{
					{ID: "section-1-1", SectionNumber: "1.1", MaxMarks: 50, Attachments: []string{}, LastModified: now},
					{ID: "section-1-2", SectionNumber: "1.2", MaxMarks: 50, Attachments: []string{}, LastModified: now},
				},
			},
			{
				ID: "criteria-2", CriteriaNumber: 2, MaxMarks: 100, TotalMarks: 100,
				Sections: []Section{
					{ID: "section-2-1", SectionNumber: "2.1", MaxMarks: 50, Attachments: []string{}, LastModified: now},
					{ID: "section-2-2", SectionNumber: "2.2", MaxMarks: 50, Attachments: []string{}, LastModified: now},
				},
			},
		},
		MaxOverallMarks: 200,
		LastModified:    now,
	}
}

func TestApplicationRecompute(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	t.Run("all empty", func(t *testing.T) {
		app := twoByTwo()
		app.Recompute()
		assert.Equal(t, 0, app.CompletionPercentage)
		assert.Equal(t, StatusDraft, app.Status)
	})

	t.Run("one of four filled", func(t *testing.T) {
		app := twoByTwo()
		up := SectionUpdate{Content: strPtr("x")}
		up.apply(&app.Criteria[0].Sections[0], now)
		app.Recompute()

		assert.Equal(t, 1, app.Criteria[0].CompletedSections)
		assert.Equal(t, 0, app.Criteria[1].CompletedSections)
		assert.Equal(t, 25, app.CompletionPercentage) // round(100 * 1/4)
		assert.Equal(t, StatusInProgress, app.Status)
	})

	t.Run("all filled", func(t *testing.T) {
		app := twoByTwo()
		for ci := range app.Criteria {
			for si := range app.Criteria[ci].Sections {
				up := SectionUpdate{Content: strPtr("done")}
				up.apply(&app.Criteria[ci].Sections[si], now)
			}
		}
		app.Recompute()

		assert.Equal(t, 100, app.CompletionPercentage)
		assert.Equal(t, StatusCompleted, app.Status)
	})

	t.Run("blank content does not count", func(t *testing.T) {
		app := twoByTwo()
		up := SectionUpdate{Content: strPtr("   \n\t ")}
		up.apply(&app.Criteria[0].Sections[0], now)
		app.Recompute()

		assert.False(t, app.Criteria[0].Sections[0].IsCompleted)
		assert.Equal(t, 0, app.CompletionPercentage)
		assert.Equal(t, StatusDraft, app.Status)
	})

	t.Run("rounding is to nearest", func(t *testing.T) {
		app := twoByTwo()
		app.Criteria[0].Sections = append(app.Criteria[0].Sections,
			Section{ID: "section-1-3", Attachments: []string{}})
		app.Criteria[1].Sections = append(app.Criteria[1].Sections,
			Section{ID: "section-2-3", Attachments: []string{}})
		// 1 of 6 completed: round(16.66) == 17
		up := SectionUpdate{Content: strPtr("x")}
		up.apply(&app.Criteria[0].Sections[0], now)
		app.Recompute()
		assert.Equal(t, 17, app.CompletionPercentage)
	})

	t.Run("workflow status is never overwritten", func(t *testing.T) {
		app := twoByTwo()
		app.Status = StatusSubmitted
		app.Recompute()
		assert.Equal(t, StatusSubmitted, app.Status)
	})

	t.Run("marks roll up", func(t *testing.T) {
		app := twoByTwo()
		up := SectionUpdate{Content: strPtr("x"), ObtainedMarks: intPtr(40)}
		up.apply(&app.Criteria[0].Sections[0], now)
		up = SectionUpdate{ObtainedMarks: intPtr(30)}
		up.apply(&app.Criteria[1].Sections[1], now)
		app.Recompute()

		assert.Equal(t, 40, app.Criteria[0].ObtainedMarks)
		assert.Equal(t, 30, app.Criteria[1].ObtainedMarks)
		assert.Equal(t, 70, app.OverallMarks)
	})
}

func TestCriteriaProgress(t *testing.T) {
	c := Criteria{}
	assert.Equal(t, 0, c.Progress())

	c.Sections = []Section{{IsCompleted: true}, {}, {}}
	c.Recompute()
	assert.Equal(t, 33, c.Progress())
}

func TestApplicationNormalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		app := Application{ID: "app-1", DepartmentID: "CSE"}
		app.Normalize()

		require.NotNil(t, app.Criteria)
		assert.Empty(t, app.Criteria)
		assert.Equal(t, StatusDraft, app.Status)
	})

	t.Run("re-derives stale flags", func(t *testing.T) {
		app := twoByTwo()
		// a record persisted with inconsistent derived fields
		app.Criteria[0].Sections[0].Content = "filled in"
		app.Criteria[0].Sections[0].IsCompleted = false
		app.Criteria[0].Sections[1].Attachments = nil
		app.CompletionPercentage = 480
		app.Normalize()

		assert.True(t, app.Criteria[0].Sections[0].IsCompleted)
		assert.NotNil(t, app.Criteria[0].Sections[1].Attachments)
		assert.Equal(t, 25, app.CompletionPercentage)
		assert.Equal(t, StatusInProgress, app.Status)
	})

	t.Run("clamps percentage on criteria-less applications", func(t *testing.T) {
		app := Application{ID: "app-2", DepartmentID: instituteInfoDepartment, CompletionPercentage: 250}
		app.Normalize()
		assert.Equal(t, 100, app.CompletionPercentage)
		assert.Equal(t, StatusCompleted, app.Status)
	})
}

func TestSectionUpdateApply(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s := Section{ID: "section-1-1", Content: "old", Attachments: []string{"a.pdf"}, ObtainedMarks: 10, IsCompleted: true}

	// nil fields leave values untouched
	SectionUpdate{ObtainedMarks: intPtr(15)}.apply(&s, now)
	assert.Equal(t, "old", s.Content)
	assert.Equal(t, []string{"a.pdf"}, s.Attachments)
	assert.Equal(t, 15, s.ObtainedMarks)
	assert.Equal(t, now, s.LastModified)

	// clearing the content clears completion
	SectionUpdate{Content: strPtr("")}.apply(&s, now)
	assert.False(t, s.IsCompleted)

	SectionUpdate{Attachments: &[]string{"a.pdf", "b.pdf"}}.apply(&s, now)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, s.Attachments)

	assert.True(t, SectionUpdate{}.IsEmpty())
	assert.False(t, SectionUpdate{Content: strPtr("")}.IsEmpty())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
