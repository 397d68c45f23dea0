package registration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mamadbah2/hostel/internal/domain/calendar"
)

// ErrRosterHeader indicates the sheet's first row lacks a required column.
var ErrRosterHeader = errors.New("roster header row is missing a required column")

// Sheets counts serial dates from this day.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var rosterDateLayouts = []string{calendar.Layout, "02/01/2006", "2/1/2006", "2 Jan 2006", "02-01-2006"}

// RosterEntry is one pre-registered resident.
type RosterEntry struct {
	Name             string
	Department       string
	Program          string
	Semester         int
	RegistrationDate calendar.Date
}

// Roster is the versioned reference list registration is checked against.
// Each Replace publishes a new immutable snapshot.
type Roster struct {
	mu       sync.RWMutex
	version  int
	loadedAt time.Time
	entries  []RosterEntry
}

// NewRoster returns an empty roster at version 0.
func NewRoster() *Roster {
	return &Roster{}
}

// Replace swaps in a new snapshot and returns its version.
func (r *Roster) Replace(entries []RosterEntry, loadedAt time.Time) int {
	snapshot := append([]RosterEntry(nil), entries...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.version++
	r.loadedAt = loadedAt
	r.entries = snapshot
	return r.version
}

// Version returns the current snapshot version and its size.
func (r *Roster) Version() (version int, size int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version, len(r.entries)
}

// Lookup finds an entry by case-insensitive name.
func (r *Roster) Lookup(name string) (RosterEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if strings.EqualFold(entry.Name, strings.TrimSpace(name)) {
			return entry, true
		}
	}
	return RosterEntry{}, false
}

// ParseRosterRows maps sheet rows to entries using the header row
// (Name, Department, Program, Semester, RegistrationDate). Blank rows are
// skipped; unparseable semesters and dates are left zero.
func ParseRosterRows(rows [][]interface{}) ([]RosterEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int)
	for i, cell := range rows[0] {
		key := strings.ToLower(strings.ReplaceAll(cellString(cell), " ", ""))
		columns[key] = i
	}
	for _, required := range []string{"name", "department", "program", "registrationdate"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrRosterHeader, required)
		}
	}

	get := func(row []interface{}, column string) interface{} {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	entries := make([]RosterEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cellString(get(row, "name"))
		if name == "" {
			continue
		}
		entry := RosterEntry{
			Name:       name,
			Department: cellString(get(row, "department")),
			Program:    cellString(get(row, "program")),
		}
		if semester, err := strconv.Atoi(cellString(get(row, "semester"))); err == nil {
			entry.Semester = semester
		}
		if date, ok := parseRosterDate(get(row, "registrationdate")); ok {
			entry.RegistrationDate = date
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseRosterDate(value interface{}) (calendar.Date, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || v <= 0 {
			return calendar.Date{}, false
		}
		return calendar.Of(sheetsEpoch.AddDate(0, 0, int(v))), true
	case string:
		s := strings.TrimSpace(v)
		if d, err := calendar.Parse(s); err == nil {
			return d, true
		}
		for _, layout := range rosterDateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return calendar.Of(t), true
			}
		}
	}
	return calendar.Date{}, false
}

func cellString(cell interface{}) string {
	if cell == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(cell))
}
