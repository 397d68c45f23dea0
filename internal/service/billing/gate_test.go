package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
	"github.com/mamadbah2/hostel/internal/repository/memory"
)

func TestGate_ConsumeIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	addStudent(t, store, "a", models.RoleStudent, approvedLeave(1, 21))
	addStudent(t, store, "b", models.RoleStudent, approvedLeave(1, 11))
	_, err := newTestEngine(store, nil).Generate(ctx, standardInputs)
	require.NoError(t, err)

	gate := NewGate(store, "₹", nil)

	flag, err := gate.Peek(ctx, "a")
	require.NoError(t, err)
	assert.True(t, flag)

	history, err := gate.Consume(ctx, "a")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "₹850.00", history[0].StudentShare)
	assert.Equal(t, "October 2026", history[0].Label)

	flag, err = gate.Peek(ctx, "a")
	require.NoError(t, err)
	assert.False(t, flag)

	_, err = gate.Consume(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrNoNewBill)

	// The other student's flag is untouched.
	flag, err = gate.Peek(ctx, "b")
	require.NoError(t, err)
	assert.True(t, flag)
}

func TestGate_HistoryDoesNotClearFlag(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	addStudent(t, store, "a", models.RoleStudent)
	_, err := newTestEngine(store, nil).Generate(ctx, standardInputs)
	require.NoError(t, err)
	gate := NewGate(store, "₹", nil)

	history, err := gate.History(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	flag, err := gate.Peek(ctx, "a")
	require.NoError(t, err)
	assert.True(t, flag)
}

func TestGate_UnknownStudent(t *testing.T) {
	gate := NewGate(memory.NewStore(), "₹", nil)

	_, err := gate.Peek(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrStudentNotFound)

	_, err = gate.Consume(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrStudentNotFound)
}
