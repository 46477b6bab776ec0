package repository

import (
	"context"
	"sync"

	"github.com/davrot/questionnaire-backend/internal/questionnaire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Repository used by unit tests and local
// development without a MongoDB instance. It mirrors the Mongo
// implementation's semantics, including the conditional rating write.
type MemoryRepo struct {
	mu sync.Mutex
	q  *questionnaire.Questionnaire
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// ensure lazily creates the aggregate, matching Mongo upsert behavior.
// Caller must hold mu.
func (m *MemoryRepo) ensure() *questionnaire.Questionnaire {
	if m.q == nil {
		m.q = &questionnaire.Questionnaire{
			ID:    questionnaire.QuestionnaireID,
			Links: []questionnaire.Link{},
			Users: []questionnaire.User{},
		}
	}
	return m.q
}

// snapshot returns a copy so callers never share slices with the store.
// Caller must hold mu.
func (m *MemoryRepo) snapshot() *questionnaire.Questionnaire {
	cp := *m.q
	cp.Links = append([]questionnaire.Link(nil), m.q.Links...)
	cp.Users = append([]questionnaire.User(nil), m.q.Users...)
	for i := range cp.Users {
		cp.Users[i].Rates = append([]float64(nil), m.q.Users[i].Rates...)
	}
	return &cp
}

func (m *MemoryRepo) Get(ctx context.Context) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q == nil {
		return nil, ErrNotFound
	}
	return m.snapshot(), nil
}

func (m *MemoryRepo) AppendUser(ctx context.Context, u questionnaire.User) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.ensure()
	q.Users = append(q.Users, u)
	return m.snapshot(), nil
}

func (m *MemoryRepo) FindUserByEmail(ctx context.Context, email string) (*questionnaire.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q == nil {
		return nil, ErrNotFound
	}
	for i := range m.q.Users {
		if m.q.Users[i].Email == email {
			u := m.q.Users[i]
			u.Rates = append([]float64(nil), u.Rates...)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) FindUserByID(ctx context.Context, id primitive.ObjectID) (*questionnaire.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByIDLocked(id)
}

func (m *MemoryRepo) findByIDLocked(id primitive.ObjectID) (*questionnaire.User, error) {
	if m.q == nil {
		return nil, ErrNotFound
	}
	for i := range m.q.Users {
		if m.q.Users[i].ID == id {
			u := m.q.Users[i]
			u.Rates = append([]float64(nil), u.Rates...)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) UpdateUserRating(ctx context.Context, id primitive.ObjectID, prevLen int, rates []float64, lastAvg, currentAvg float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q == nil {
		return ErrNotFound
	}
	for i := range m.q.Users {
		if m.q.Users[i].ID != id {
			continue
		}
		if len(m.q.Users[i].Rates) != prevLen {
			return ErrConcurrentUpdate
		}
		m.q.Users[i].Rates = append([]float64(nil), rates...)
		m.q.Users[i].LastAverage = lastAvg
		m.q.Users[i].CurrentAverage = currentAvg
		return nil
	}
	return ErrNotFound
}

func (m *MemoryRepo) SetImage(ctx context.Context, path string) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.ensure()
	q.Image = path
	return m.snapshot(), nil
}

func (m *MemoryRepo) SetQuestion(ctx context.Context, text string) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.ensure()
	q.Question = text
	return m.snapshot(), nil
}

func (m *MemoryRepo) SetActive(ctx context.Context, flag bool) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.ensure()
	q.Status = flag
	return m.snapshot(), nil
}

func (m *MemoryRepo) SetUserAnswer(ctx context.Context, id primitive.ObjectID, answer string) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.q == nil {
		return nil, ErrNotFound
	}
	for i := range m.q.Users {
		if m.q.Users[i].ID == id {
			m.q.Users[i].Answer = answer
			return m.snapshot(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) AppendLink(ctx context.Context, l questionnaire.Link) (*questionnaire.Questionnaire, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.ensure()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	q.Links = append(q.Links, l)
	return m.snapshot(), nil
}
