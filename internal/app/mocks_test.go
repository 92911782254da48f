package app_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/domain"
)

// --- Mocks ---

type memRequests struct {
	mu       sync.Mutex
	tx       sync.Mutex
	requests map[string]domain.ParticipationRequest
	order    []string
	saveErr  error
}

func newMemRequests() *memRequests {
	return &memRequests{requests: make(map[string]domain.ParticipationRequest)}
}

func (m *memRequests) Get(_ context.Context, id string) (domain.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return domain.ParticipationRequest{}, domain.NotFound(domain.EntityRequest, id)
	}
	return r, nil
}

func (m *memRequests) FindByRequester(_ context.Context, requesterID string) ([]domain.ParticipationRequest, error) {
	return m.filter(func(r domain.ParticipationRequest) bool { return r.RequesterID == requesterID }), nil
}

func (m *memRequests) FindByEvent(_ context.Context, eventID string) ([]domain.ParticipationRequest, error) {
	return m.filter(func(r domain.ParticipationRequest) bool { return r.EventID == eventID }), nil
}

func (m *memRequests) CountByEventAndStatus(_ context.Context, eventID string, status domain.RequestStatus) (int, error) {
	return len(m.filter(func(r domain.ParticipationRequest) bool {
		return r.EventID == eventID && r.Status == status
	})), nil
}

func (m *memRequests) ExistsActive(_ context.Context, requesterID, eventID string) (bool, error) {
	return len(m.filter(func(r domain.ParticipationRequest) bool {
		return r.RequesterID == requesterID && r.EventID == eventID && r.Active()
	})) > 0, nil
}

func (m *memRequests) Save(_ context.Context, r domain.ParticipationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.requests[r.ID]; !ok {
		m.order = append(m.order, r.ID)
	}
	m.requests[r.ID] = r
	return nil
}

func (m *memRequests) SaveAll(ctx context.Context, rs []domain.ParticipationRequest) error {
	for _, r := range rs {
		if err := m.Save(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// WithinEvent serializes units of work and restores the previous state when
// fn fails, mimicking a rolled back transaction.
func (m *memRequests) WithinEvent(ctx context.Context, _ string, fn func(context.Context, domain.RequestStore) error) error {
	m.tx.Lock()
	defer m.tx.Unlock()

	snapshot, order := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.requests, m.order = snapshot, order
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memRequests) snapshot() (map[string]domain.ParticipationRequest, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]domain.ParticipationRequest, len(m.requests))
	for k, v := range m.requests {
		cp[k] = v
	}
	return cp, append([]string(nil), m.order...)
}

func (m *memRequests) filter(keep func(domain.ParticipationRequest) bool) []domain.ParticipationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ParticipationRequest
	for _, id := range m.order {
		if r := m.requests[id]; keep(r) {
			out = append(out, r)
		}
	}
	return out
}

type memComments struct {
	mu       sync.Mutex
	comments map[string]domain.Comment
}

func newMemComments() *memComments {
	return &memComments{comments: make(map[string]domain.Comment)}
}

func (m *memComments) Create(_ context.Context, c domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ID] = c
	return nil
}

func (m *memComments) Get(_ context.Context, id string) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return domain.Comment{}, domain.NotFound(domain.EntityComment, id)
	}
	return c, nil
}

func (m *memComments) GetByAuthor(ctx context.Context, id, authorID string) (domain.Comment, error) {
	c, err := m.Get(ctx, id)
	if err != nil {
		return domain.Comment{}, err
	}
	if c.AuthorID != authorID {
		return domain.Comment{}, domain.NotFound(domain.EntityComment, id)
	}
	return c, nil
}

func (m *memComments) Update(_ context.Context, c domain.Comment, expected domain.CommentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.comments[c.ID]
	if !ok || stored.Status != expected {
		return domain.ErrConcurrentModified
	}
	m.comments[c.ID] = c
	return nil
}

func (m *memComments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return domain.NotFound(domain.EntityComment, id)
	}
	delete(m.comments, id)
	return nil
}

func (m *memComments) FindByEventAndStatus(_ context.Context, eventID string, status domain.CommentStatus) ([]domain.Comment, error) {
	return m.filter(func(c domain.Comment) bool { return c.EventID == eventID && c.Status == status }), nil
}

func (m *memComments) FindApprovedByEvent(_ context.Context, eventID string, page domain.Page) ([]domain.Comment, error) {
	all := m.filter(func(c domain.Comment) bool {
		return c.EventID == eventID && c.Status == domain.CommentApproved
	})
	return window(all, page), nil
}

func (m *memComments) Search(_ context.Context, s domain.CommentSearch) ([]domain.Comment, error) {
	all := m.filter(func(c domain.Comment) bool {
		if v, ok := s.Status.Get(); ok && c.Status != v {
			return false
		}
		if v, ok := s.EventID.Get(); ok && c.EventID != v {
			return false
		}
		if v, ok := s.AuthorID.Get(); ok && c.AuthorID != v {
			return false
		}
		if v, ok := s.Start.Get(); ok && c.CreatedOn.Before(v) {
			return false
		}
		if v, ok := s.End.Get(); ok && c.CreatedOn.After(v) {
			return false
		}
		return true
	})
	return window(all, s.Page), nil
}

func (m *memComments) filter(keep func(domain.Comment) bool) []domain.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.comments {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func window(all []domain.Comment, page domain.Page) []domain.Comment {
	start := page.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

type directory struct {
	users       map[string]domain.User
	events      map[string]domain.EventSnapshot
	unavailable bool
}

func newDirectory() *directory {
	return &directory{
		users:  make(map[string]domain.User),
		events: make(map[string]domain.EventSnapshot),
	}
}

func (d *directory) addUsers(ids ...string) {
	for _, id := range ids {
		d.users[id] = domain.User{ID: id, Name: "user " + id}
	}
}

func (d *directory) User(_ context.Context, id string) (domain.User, error) {
	if d.unavailable {
		return domain.User{}, &domain.UnavailableError{Directory: domain.EntityUser, ID: id, Err: errDown}
	}
	u, ok := d.users[id]
	if !ok {
		return domain.User{}, domain.NotFound(domain.EntityUser, id)
	}
	return u, nil
}

func (d *directory) Snapshot(_ context.Context, id string) (domain.EventSnapshot, error) {
	if d.unavailable {
		return domain.EventSnapshot{}, &domain.UnavailableError{Directory: domain.EntityEvent, ID: id, Err: errDown}
	}
	e, ok := d.events[id]
	if !ok {
		return domain.EventSnapshot{}, domain.NotFound(domain.EntityEvent, id)
	}
	return e, nil
}

var errDown = errors.New("connection refused")

type recordingPublisher struct {
	mu      sync.Mutex
	changes []domain.Change
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, c domain.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) kinds() []domain.ChangeKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ChangeKind, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Kind)
	}
	return out
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
