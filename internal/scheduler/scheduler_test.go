package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository/memory"
	"github.com/mamadbah2/hostel/internal/service/announce"
)

func newTestScheduler(t *testing.T) (*Scheduler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	s := NewScheduler("0 9 28 * *", store, store, announce.NewService(store, nil, "", "₹", nil), nil)
	s.now = func() time.Time { return time.Date(2026, time.October, 28, 9, 0, 0, 0, time.UTC) }
	return s, store
}

func TestRemind_NoBillYet(t *testing.T) {
	s, store := newTestScheduler(t)
	ctx := context.Background()
	require.NoError(t, store.CreateStudent(ctx, &models.Student{HostelID: "a", Role: models.RoleStudent}))
	require.NoError(t, store.AppendLeave(ctx, "a", models.Leave{
		ID:   primitive.NewObjectID(),
		From: time.Date(2026, time.October, 29, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, time.October, 30, 0, 0, 0, 0, time.UTC),
	}))

	sent, err := s.remind(ctx)

	require.NoError(t, err)
	assert.True(t, sent)
	list, err := store.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "10-2026")
	assert.Contains(t, list[0].Message, "1 leave request(s)")
}

func TestRemind_BillAlreadyGenerated(t *testing.T) {
	s, store := newTestScheduler(t)
	ctx := context.Background()
	require.NoError(t, store.CreateExpense(ctx, &models.ExpenseRecord{MonthYear: "10-2026", TotalExpense: 1000}))

	sent, err := s.remind(ctx)

	require.NoError(t, err)
	assert.False(t, sent)
	list, err := store.ListNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStart_InvalidSpec(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.spec = "whenever"

	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t)

	require.NoError(t, s.Start())
	s.Stop()
}
