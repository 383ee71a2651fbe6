package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"
)

// memStore is an in-memory stand-in for every provider the services use.
type memStore struct {
	mu         sync.Mutex
	users      map[string]domains.Questioner
	surveys    map[string]domains.Survey
	questions  map[string]domains.Question
	completed  map[string]domains.SurveyResponse
	incomplete map[string]domains.IncompleteSurveyResponse
	failList   error
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]domains.Questioner{},
		surveys:    map[string]domains.Survey{},
		questions:  map[string]domains.Question{},
		completed:  map[string]domains.SurveyResponse{},
		incomplete: map[string]domains.IncompleteSurveyResponse{},
	}
}

func (m *memStore) SaveUser(_ context.Context, passHash string, user domains.Questioner) (domains.Questioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domains.Questioner{}, storage.ErrUserExist
		}
	}
	user.Password = passHash
	m.users[user.Id] = user
	return user, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (domains.Questioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domains.Questioner{}, storage.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id string) (domains.Questioner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domains.Questioner{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memStore) SaveSurvey(_ context.Context, s domains.Survey) (domains.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surveys[s.ID] = s
	return s, nil
}

func (m *memStore) UpdateSurvey(_ context.Context, s domains.Survey) (domains.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.surveys[s.ID]; !ok {
		return domains.Survey{}, storage.ErrNotFound
	}
	m.surveys[s.ID] = s
	return s, nil
}

func (m *memStore) GetSurveyByID(_ context.Context, id string) (domains.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.surveys[id]
	if !ok {
		return domains.Survey{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *memStore) ListSurveys(_ context.Context, ownerID string) ([]domains.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []domains.Survey
	for _, s := range m.surveys {
		if ownerID == "" || s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) SaveQuestion(_ context.Context, q domains.Question) (domains.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
	return q, nil
}

func (m *memStore) UpdateQuestion(_ context.Context, q domains.Question) (domains.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return domains.Question{}, storage.ErrNotFound
	}
	m.questions[q.ID] = q
	return q, nil
}

func (m *memStore) GetQuestionByID(_ context.Context, id string) (domains.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return domains.Question{}, storage.ErrNotFound
	}
	return q, nil
}

func (m *memStore) GetQuestionsByIDs(_ context.Context, ids []string) ([]domains.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domains.Question
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func inFilter(surveyID string, t time.Time, f domains.ResponseFilter) bool {
	if !containsID(f.SurveyIDs, surveyID) {
		return false
	}
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	return f.To == nil || !t.After(*f.To)
}

func (m *memStore) ListCompleted(_ context.Context, f domains.ResponseFilter) ([]domains.SurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domains.SurveyResponse
	for _, r := range m.completed {
		if inFilter(r.SurveyID, r.CreatedAt, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListIncomplete(_ context.Context, f domains.ResponseFilter) ([]domains.IncompleteSurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domains.IncompleteSurveyResponse
	for _, r := range m.incomplete {
		if inFilter(r.SurveyID, r.StartedAt, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindOpenSession(_ context.Context, surveyID, respondentID string) (domains.IncompleteSurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.incomplete {
		if r.SurveyID == surveyID && r.RespondentID == respondentID && !r.IsCompleted {
			return r, nil
		}
	}
	return domains.IncompleteSurveyResponse{}, storage.ErrNotFound
}

func (m *memStore) GetSession(_ context.Context, id string) (domains.IncompleteSurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.incomplete[id]
	if !ok {
		return domains.IncompleteSurveyResponse{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memStore) CreateSession(_ context.Context, s domains.IncompleteSurveyResponse) (domains.IncompleteSurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.incomplete {
		if r.SurveyID == s.SurveyID && r.RespondentID == s.RespondentID && !r.IsCompleted {
			return domains.IncompleteSurveyResponse{}, storage.ErrConflict
		}
	}
	m.incomplete[s.ID] = s
	return s, nil
}

func (m *memStore) SaveSessionAnswers(_ context.Context, id string, answers domains.Answers, at time.Time) (domains.IncompleteSurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.incomplete[id]
	if !ok {
		return domains.IncompleteSurveyResponse{}, storage.ErrNotFound
	}
	r.Responses = answers
	r.LastUpdatedAt = at
	m.incomplete[id] = r
	return r, nil
}

func (m *memStore) SetAbandoned(_ context.Context, id string, abandoned bool, at time.Time) (domains.IncompleteSurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.incomplete[id]
	if !ok {
		return domains.IncompleteSurveyResponse{}, storage.ErrNotFound
	}
	r.IsAbandoned = &abandoned
	r.LastUpdatedAt = at
	m.incomplete[id] = r
	return r, nil
}

func (m *memStore) AbandonStale(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.incomplete {
		if r.Open() && r.LastUpdatedAt.Before(before) {
			abandoned := true
			r.IsAbandoned = &abandoned
			m.incomplete[id] = r
			n++
		}
	}
	return n, nil
}

func (m *memStore) HasCompleted(_ context.Context, surveyID, respondentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.completed {
		if r.SurveyID == surveyID && r.RespondentID == respondentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Promote(_ context.Context, sessionID string, c domains.SurveyResponse) (domains.SurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.incomplete[sessionID]; !ok {
		return domains.SurveyResponse{}, storage.ErrNotFound
	}
	for _, r := range m.completed {
		if r.SurveyID == c.SurveyID && r.RespondentID == c.RespondentID {
			return domains.SurveyResponse{}, storage.ErrConflict
		}
	}
	delete(m.incomplete, sessionID)
	m.completed[c.ID] = c
	return c, nil
}

func (m *memStore) GetCompleted(_ context.Context, id string) (domains.SurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.completed[id]
	if !ok {
		return domains.SurveyResponse{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memStore) UpdateCompleted(_ context.Context, r domains.SurveyResponse) (domains.SurveyResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.completed[r.ID]; !ok {
		return domains.SurveyResponse{}, storage.ErrNotFound
	}
	m.completed[r.ID] = r
	return r, nil
}

func (m *memStore) DeleteCompleted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.completed[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.completed, id)
	return nil
}

var errStoreDown = errors.New("store down")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptr[T any](v T) *T {
	return &v
}
