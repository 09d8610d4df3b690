package repo

import (
	"context"
	"testing"

	"github.com/daystreak/api/internal/modules/model"
	"github.com/daystreak/api/internal/pkg/apperr"
	"github.com/daystreak/api/internal/pkg/datex"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepo_CreateAddsToDay(t *testing.T) {
	db := newTestDB(t)
	r := NewTaskRepo(db)
	ctx := context.Background()
	date := datex.MustParse("2024-06-10")

	task := &model.Task{UserID: "u1", Title: "  run  ", Description: "5k", TaskDate: date}
	day, err := r.Create(ctx, task)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "run", task.Title)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Equal(t, "u1", task.CreatedBy)
	assert.Equal(t, []uuid.UUID{task.ID}, day.TaskIDs)
	assert.Equal(t, model.DayIdle, day.Status)

	got, err := r.Get(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", got.TaskDate.String())

	_, err = r.Get(ctx, "u2", task.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTaskRepo_CreateRejectsBlankTitle(t *testing.T) {
	r := NewTaskRepo(newTestDB(t))
	_, err := r.Create(context.Background(), &model.Task{UserID: "u1", Title: "   ", TaskDate: datex.MustParse("2024-06-10")})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
}

func TestTaskRepo_UpdateMovesDate(t *testing.T) {
	db := newTestDB(t)
	r := NewTaskRepo(db)
	days := NewDayRepo(db)
	ctx := context.Background()
	from := datex.MustParse("2024-06-10")
	to := datex.MustParse("2024-06-11")

	task := &model.Task{UserID: "u1", Title: "run", Description: "5k", TaskDate: from}
	_, err := r.Create(ctx, task)
	require.NoError(t, err)

	done := model.TaskDone
	updated, day, err := r.Update(ctx, "u1", task.ID, TaskPatch{Status: &done, TaskDate: &to})
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, updated.Status)
	assert.Equal(t, "run", updated.Title)
	assert.True(t, day.Date.Equal(to))
	assert.Equal(t, []uuid.UUID{task.ID}, day.TaskIDs)

	// the old day became empty and is gone
	_, err = days.Get(ctx, "u1", from)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTaskRepo_UpdateSameDateKeepsMembership(t *testing.T) {
	db := newTestDB(t)
	r := NewTaskRepo(db)
	ctx := context.Background()
	date := datex.MustParse("2024-06-10")

	task := &model.Task{UserID: "u1", Title: "run", Description: "5k", TaskDate: date}
	first, err := r.Create(ctx, task)
	require.NoError(t, err)

	_, day, err := r.Update(ctx, "u1", task.ID, TaskPatch{Title: strPtr("walk")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, day.ID)
	assert.Equal(t, []uuid.UUID{task.ID}, day.TaskIDs)

	_, _, err = r.Update(ctx, "u1", uuid.New(), TaskPatch{})
	assert.True(t, apperr.IsNotFound(err))
}

func TestTaskRepo_Delete(t *testing.T) {
	db := newTestDB(t)
	r := NewTaskRepo(db)
	days := NewDayRepo(db)
	ctx := context.Background()
	date := datex.MustParse("2024-06-10")

	a := &model.Task{UserID: "u1", Title: "a", Description: "a", TaskDate: date}
	b := &model.Task{UserID: "u1", Title: "b", Description: "b", TaskDate: date}
	_, err := r.Create(ctx, a)
	require.NoError(t, err)
	_, err = r.Create(ctx, b)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "u1", a.ID))
	day, err := days.Get(ctx, "u1", date)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, day.TaskIDs)

	require.NoError(t, r.Delete(ctx, "u1", b.ID))
	_, err = days.Get(ctx, "u1", date)
	assert.True(t, apperr.IsNotFound(err))

	err = r.Delete(ctx, "u1", b.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTaskRepo_ListByUserDate(t *testing.T) {
	r := NewTaskRepo(newTestDB(t))
	ctx := context.Background()
	date := datex.MustParse("2024-06-10")

	for _, tk := range []*model.Task{
		{UserID: "u1", Title: "a", Description: "a", TaskDate: date},
		{UserID: "u1", Title: "b", Description: "b", TaskDate: date.AddDays(1)},
		{UserID: "u2", Title: "c", Description: "c", TaskDate: date},
	} {
		_, err := r.Create(ctx, tk)
		require.NoError(t, err)
	}

	got, err := r.ListByUserDate(ctx, "u1", date)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)
}
