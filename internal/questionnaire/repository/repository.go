package repository

import (
	"context"
	"errors"

	"github.com/davrot/questionnaire-backend/internal/questionnaire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the aggregate, or the addressed embedded
	// user, does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentUpdate is returned when a conditional rating write lost a
	// race (the rates array moved between read and write).
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// Repository is the aggregate store accessor: every method is one
// read-modify-write against the singleton questionnaire document.
type Repository interface {
	// Get returns the singleton aggregate or ErrNotFound.
	Get(ctx context.Context) (*questionnaire.Questionnaire, error)

	// AppendUser pushes a new user onto the aggregate, creating the aggregate
	// when the store is empty. Returns the updated aggregate.
	AppendUser(ctx context.Context, u questionnaire.User) (*questionnaire.Questionnaire, error)

	// FindUserByEmail returns the embedded user with the given email, or
	// ErrNotFound.
	FindUserByEmail(ctx context.Context, email string) (*questionnaire.User, error)

	// FindUserByID returns the embedded user with the given id, or ErrNotFound.
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*questionnaire.User, error)

	// UpdateUserRating replaces the user's rating state, but only while the
	// rates array still holds prevLen entries. Returns ErrConcurrentUpdate
	// when the condition no longer holds and ErrNotFound when the user is
	// missing.
	UpdateUserRating(ctx context.Context, id primitive.ObjectID, prevLen int, rates []float64, lastAvg, currentAvg float64) error

	// SetImage upserts the aggregate image path and returns the updated
	// aggregate.
	SetImage(ctx context.Context, path string) (*questionnaire.Questionnaire, error)

	// SetQuestion upserts the question text and returns the updated aggregate.
	SetQuestion(ctx context.Context, text string) (*questionnaire.Questionnaire, error)

	// SetActive upserts the active flag and returns the updated aggregate.
	SetActive(ctx context.Context, flag bool) (*questionnaire.Questionnaire, error)

	// SetUserAnswer sets the answer of the embedded user with the given id.
	// Returns the updated aggregate, or ErrNotFound when no user matches.
	SetUserAnswer(ctx context.Context, id primitive.ObjectID, answer string) (*questionnaire.Questionnaire, error)

	// AppendLink pushes a link onto the aggregate (upserting it when absent)
	// and returns the updated aggregate.
	AppendLink(ctx context.Context, l questionnaire.Link) (*questionnaire.Questionnaire, error)
}
