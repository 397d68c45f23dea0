package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_StripsTimeInUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 02:00 local on Oct 5 is still Oct 4 in UTC.
	local := time.Date(2026, time.October, 5, 2, 0, 0, 0, ist)

	got := Of(local)

	assert.Equal(t, New(2026, time.October, 4), got)
	assert.Equal(t, time.UTC, got.Time().Location())
	assert.Zero(t, got.Time().Hour())
}

func TestParse(t *testing.T) {
	d, err := Parse("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, New(2026, time.October, 19), d)

	d, err = Parse("2026-10-19T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, New(2026, time.October, 19), d)

	_, err = Parse("19/10/2026")
	assert.Error(t, err)

	_, err = Parse("  ")
	assert.Error(t, err)
}

func TestDaysThrough(t *testing.T) {
	start := New(2026, time.October, 1)

	assert.Equal(t, 1, start.DaysThrough(start))
	assert.Equal(t, 19, start.DaysThrough(New(2026, time.October, 19)))
	assert.Equal(t, 0, start.DaysThrough(New(2026, time.September, 30)))
	// Leap day counted.
	assert.Equal(t, 29, New(2028, time.February, 1).DaysThrough(New(2028, time.February, 29)))
}

func TestMonthYear(t *testing.T) {
	assert.Equal(t, "03-2026", New(2026, time.March, 31).MonthYear())
	assert.Equal(t, "12-2025", New(2025, time.December, 1).MonthYear())
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		From Date `json:"from"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"from":"2026-10-21"}`), &p))
	assert.Equal(t, New(2026, time.October, 21), p.From)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2026-10-21"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"from":20261021}`), &p))
}
