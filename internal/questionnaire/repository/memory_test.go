package repository

import (
	"context"
	"testing"

	"github.com/davrot/questionnaire-backend/internal/questionnaire"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryRepo_EmptyStore(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindUserByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.SetUserAnswer(ctx, primitive.NewObjectID(), "42")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_AppendUserCreatesAggregate(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	u := questionnaire.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "a@x.com", Rates: []float64{}}
	q, err := repo.AppendUser(ctx, u)
	require.NoError(t, err)
	require.Equal(t, questionnaire.QuestionnaireID, q.ID)
	require.Len(t, q.Users, 1)

	got, err := repo.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestMemoryRepo_UpdateUserRatingConditional(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	u := questionnaire.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "a@x.com", Rates: []float64{}}
	_, err := repo.AppendUser(ctx, u)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateUserRating(ctx, u.ID, 0, []float64{4}, 0, 4))

	// stale prevLen: the rates array already moved
	err = repo.UpdateUserRating(ctx, u.ID, 0, []float64{2}, 0, 2)
	require.ErrorIs(t, err, ErrConcurrentUpdate)

	// unknown user
	err = repo.UpdateUserRating(ctx, primitive.NewObjectID(), 0, []float64{1}, 0, 1)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := repo.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []float64{4}, got.Rates)
	require.Equal(t, 4.0, got.CurrentAverage)
}

func TestMemoryRepo_FieldUpserts(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	q, err := repo.SetQuestion(ctx, "How was it?")
	require.NoError(t, err)
	require.Equal(t, "How was it?", q.Question)

	q, err = repo.SetActive(ctx, true)
	require.NoError(t, err)
	require.True(t, q.Status)

	q, err = repo.SetImage(ctx, "uploads/1.png")
	require.NoError(t, err)
	require.Equal(t, "uploads/1.png", q.Image)

	q, err = repo.AppendLink(ctx, questionnaire.Link{Title: "docs", Value: "https://example.com"})
	require.NoError(t, err)
	require.Len(t, q.Links, 1)
	require.False(t, q.Links[0].ID.IsZero())
}

func TestMemoryRepo_SetUserAnswer(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	u := questionnaire.User{ID: primitive.NewObjectID(), Name: "Alice", Email: "a@x.com"}
	_, err := repo.AppendUser(ctx, u)
	require.NoError(t, err)

	q, err := repo.SetUserAnswer(ctx, u.ID, "42")
	require.NoError(t, err)
	require.Equal(t, "42", q.Users[0].Answer)
}
