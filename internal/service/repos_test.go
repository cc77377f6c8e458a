package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/yourorg/taskboard/internal/domain"
)

// In-memory repository implementations shared by the service tests.

type memUserRepo struct {
	byID       map[string]*domain.User
	byEmail    map[string]*domain.User
	byUsername map[string]*domain.User
	seq        int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}, byUsername: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return &domain.DuplicateError{Field: "email"}
	}
	if _, ok := m.byUsername[u.Username]; ok {
		return &domain.DuplicateError{Field: "username"}
	}
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("u-%d", m.seq)
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	m.byUsername[u.Username] = u
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := map[string]*domain.User{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memUserRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	m.byUsername[u.Username] = u
	return nil
}

type memProjectRepo struct {
	byID map[string]*domain.Project
	seq  int
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{byID: map[string]*domain.Project{}}
}

func (m *memProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("p-%d", m.seq)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	return nil
}

func (m *memProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memProjectRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	out := []*domain.Project{}
	for _, p := range m.byID {
		if p.CanAccess(userID) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	if _, ok := m.byID[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	m.byID[p.ID] = p
	return nil
}

func (m *memProjectRepo) AppendUpdate(ctx context.Context, projectID string, update domain.ProjectUpdate) error {
	p, ok := m.byID[projectID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Updates = append(p.Updates, update)
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memProjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memBoardRepo struct {
	byID map[string]*domain.Board
	seq  int
}

func newMemBoardRepo() *memBoardRepo {
	return &memBoardRepo{byID: map[string]*domain.Board{}}
}

func (m *memBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	if b.ID == "" {
		m.seq++
		b.ID = fmt.Sprintf("b-%d", m.seq)
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.byID[b.ID] = b
	return nil
}

func (m *memBoardRepo) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	if b, ok := m.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memBoardRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Board, error) {
	out := []*domain.Board{}
	for _, b := range m.byID {
		if slices.Contains(b.Administrators, userID) ||
			slices.Contains(b.Permissions.View, userID) ||
			slices.Contains(b.Permissions.Edit, userID) ||
			slices.Contains(b.Permissions.Admin, userID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBoardRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error) {
	out := []*domain.Board{}
	for _, b := range m.byID {
		if b.Project == projectID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBoardRepo) Update(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.Project != nil {
		b.Project = *patch.Project
	}
	if patch.Type != nil {
		b.Type = *patch.Type
	}
	if patch.Visibility != nil {
		b.Visibility = *patch.Visibility
	}
	if patch.Administrators != nil {
		b.Administrators = patch.Administrators
	}
	if patch.Permissions != nil {
		b.Permissions = *patch.Permissions
	}
	if patch.Configuration != nil {
		b.Configuration = *patch.Configuration
	}
	if patch.Statistics != nil {
		b.Statistics = *patch.Statistics
	}
	if patch.IsActive != nil {
		b.IsActive = *patch.IsActive
	}
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (m *memBoardRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memListRepo struct {
	byID map[string]*domain.List
	seq  int
}

func newMemListRepo() *memListRepo {
	return &memListRepo{byID: map[string]*domain.List{}}
}

func (m *memListRepo) Create(ctx context.Context, l *domain.List) error {
	if l.ID == "" {
		m.seq++
		l.ID = fmt.Sprintf("l-%d", m.seq)
	}
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	m.byID[l.ID] = l
	return nil
}

func (m *memListRepo) GetByID(ctx context.Context, id string) (*domain.List, error) {
	if l, ok := m.byID[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memListRepo) ListByBoard(ctx context.Context, boardID string) ([]*domain.List, error) {
	out := []*domain.List{}
	for _, l := range m.byID {
		if l.Board == boardID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memListRepo) CountByBoard(ctx context.Context, boardID string) (int, error) {
	n := 0
	for _, l := range m.byID {
		if l.Board == boardID {
			n++
		}
	}
	return n, nil
}

func (m *memListRepo) Update(ctx context.Context, l *domain.List) error {
	if _, ok := m.byID[l.ID]; !ok {
		return domain.ErrNotFound
	}
	l.UpdatedAt = time.Now()
	m.byID[l.ID] = l
	return nil
}

func (m *memListRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memCardRepo struct {
	byID map[string]*domain.Card
	seq  int
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{byID: map[string]*domain.Card{}}
}

func (m *memCardRepo) Create(ctx context.Context, c *domain.Card) error {
	if c.ID == "" {
		m.seq++
		c.ID = fmt.Sprintf("c-%d", m.seq)
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byID[c.ID] = c
	return nil
}

func (m *memCardRepo) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	if c, ok := m.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memCardRepo) ListByList(ctx context.Context, listID string) ([]*domain.Card, error) {
	out := []*domain.Card{}
	for _, c := range m.byID {
		if c.List == listID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memCardRepo) CountByList(ctx context.Context, listID string) (int, error) {
	n := 0
	for _, c := range m.byID {
		if c.List == listID {
			n++
		}
	}
	return n, nil
}

func (m *memCardRepo) Update(ctx context.Context, c *domain.Card) error {
	if _, ok := m.byID[c.ID]; !ok {
		return domain.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memCardRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memTeamRepo struct {
	byID map[string]*domain.Team
	seq  int
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{byID: map[string]*domain.Team{}}
}

func (m *memTeamRepo) Create(ctx context.Context, t *domain.Team) error {
	if t.ID == "" {
		m.seq++
		t.ID = fmt.Sprintf("t-%d", m.seq)
	}
	t.CreatedAt = time.Now()
	m.byID[t.ID] = t
	return nil
}

func (m *memTeamRepo) ListByCreator(ctx context.Context, userID string) ([]*domain.Team, error) {
	out := []*domain.Team{}
	for _, t := range m.byID {
		if t.CreatedBy == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
