package service

import (
	"context"
	"errors"

	"github.com/davrot/questionnaire-backend/internal/questionnaire"
	"github.com/davrot/questionnaire-backend/internal/questionnaire/repository"
	"github.com/davrot/questionnaire-backend/pkg/logger"
	"github.com/davrot/questionnaire-backend/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// rateAttempts bounds the compare-and-swap loop in Rate. This retries lost
// races against other raters, not store failures, which surface immediately.
const rateAttempts = 3

// ImageRemover deletes a previously stored image. Implemented by the disk
// and MinIO stores.
type ImageRemover interface {
	Remove(ctx context.Context, path string) error
}

// Service holds the business rules over the aggregate store accessor.
type Service struct {
	repo   repository.Repository
	images ImageRemover
}

func NewService(repo repository.Repository, images ImageRemover) *Service {
	return &Service{repo: repo, images: images}
}

// Aggregate returns the singleton questionnaire document.
func (s *Service) Aggregate(ctx context.Context) (*questionnaire.Questionnaire, error) {
	return s.repo.Get(ctx)
}

// Register appends a new user with a bcrypt-hashed password and zeroed
// rating state. The duplicate-email check is an application-level scan of
// the embedded array; two concurrent registrations for the same email can
// both pass it (no storage constraint covers embedded array elements).
func (s *Service) Register(ctx context.Context, name, email, password string, imagePath *string) (*questionnaire.User, error) {
	if _, err := s.repo.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := questionnaire.User{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Rates:    []float64{},
		Image:    imagePath,
	}
	if _, err := s.repo.AppendUser(ctx, u); err != nil {
		return nil, err
	}
	metrics.UsersRegistered.Inc()
	return &u, nil
}

// Login authenticates by email + password. The returned user carries the
// stored hash in memory but never serializes it.
func (s *Service) Login(ctx context.Context, email, password string) (*questionnaire.User, error) {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Rate appends a rating to the user and maintains the running average pair:
// lastAverage takes the value currentAverage held before the append, and
// currentAverage becomes the mean of the extended rates sequence. The write
// is conditional on the rates length observed at read time; a lost race is
// re-read and retried up to rateAttempts times.
func (s *Service) Rate(ctx context.Context, id primitive.ObjectID, rating float64) (*questionnaire.User, error) {
	var lastErr error
	for attempt := 0; attempt < rateAttempts; attempt++ {
		u, err := s.repo.FindUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		rates := append(append([]float64(nil), u.Rates...), rating)
		lastAvg := u.CurrentAverage
		currentAvg := mean(rates)
		err = s.repo.UpdateUserRating(ctx, id, len(u.Rates), rates, lastAvg, currentAvg)
		if errors.Is(err, repository.ErrConcurrentUpdate) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		metrics.RatingsRecorded.Inc()
		u.Rates = rates
		u.LastAverage = lastAvg
		u.CurrentAverage = currentAvg
		return u, nil
	}
	return nil, lastErr
}

func mean(rates []float64) float64 {
	if len(rates) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rates {
		sum += r
	}
	return sum / float64(len(rates))
}

// ReplaceImage removes the previously stored questionnaire image
// (best-effort) and upserts the new path.
func (s *Service) ReplaceImage(ctx context.Context, path string) (*questionnaire.Questionnaire, error) {
	if q, err := s.repo.Get(ctx); err == nil && q.Image != "" {
		if err := s.images.Remove(ctx, q.Image); err != nil {
			logger.Warnf("failed to remove previous image %q: %v", q.Image, err)
		}
	}
	q, err := s.repo.SetImage(ctx, path)
	if err != nil {
		return nil, err
	}
	metrics.ImagesUploaded.Inc()
	return q, nil
}

// SetQuestion upserts the question text.
func (s *Service) SetQuestion(ctx context.Context, text string) (*questionnaire.Questionnaire, error) {
	return s.repo.SetQuestion(ctx, text)
}

// SetAnswer sets a user's answer in place.
func (s *Service) SetAnswer(ctx context.Context, id primitive.ObjectID, text string) (*questionnaire.Questionnaire, error) {
	return s.repo.SetUserAnswer(ctx, id, text)
}

// SetActive upserts the questionnaire active flag.
func (s *Service) SetActive(ctx context.Context, flag bool) (*questionnaire.Questionnaire, error) {
	return s.repo.SetActive(ctx, flag)
}

// AddLink appends a {title, value} link.
func (s *Service) AddLink(ctx context.Context, title, value string) (*questionnaire.Questionnaire, error) {
	return s.repo.AppendLink(ctx, questionnaire.Link{Title: title, Value: value})
}
