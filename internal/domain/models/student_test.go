package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortPendingLeaves_OldestApplicationFirst(t *testing.T) {
	at := func(day int) time.Time { return time.Date(2026, time.October, day, 10, 0, 0, 0, time.UTC) }
	leaves := []PendingLeave{
		{Leave: Leave{AppliedOn: at(12)}, HostelID: "c"},
		{Leave: Leave{AppliedOn: at(3)}, HostelID: "a"},
		{Leave: Leave{AppliedOn: at(12)}, HostelID: "d"},
		{Leave: Leave{AppliedOn: at(7)}, HostelID: "b"},
	}

	SortPendingLeaves(leaves)

	got := make([]string, 0, len(leaves))
	for _, l := range leaves {
		got = append(got, l.HostelID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestParseComplaintStatus(t *testing.T) {
	status, ok := ParseComplaintStatus(" resolved ")
	assert.True(t, ok)
	assert.Equal(t, ComplaintResolved, status)

	_, ok = ParseComplaintStatus("Closed")
	assert.False(t, ok)
}
