package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = bson.NewObjectID()
	cp := *u
	m.byID[u.ID.Hex()] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == email {
			cp := *x
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if x, ok := m.byID[id]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

type memProducts struct {
	mu    sync.Mutex
	items map[string]*model.Product
}

func (m *memProducts) Insert(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = bson.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.items[p.ID.Hex()] = &cp
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrProductNotFound
}

// List honours the category filter and paging; other filters are covered
// by the repository tests.
func (m *memProducts) List(_ context.Context, q repository.ProductQuery) ([]model.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, c := range q.Categories {
		want[c] = true
	}
	var out []model.Product
	for _, p := range m.items {
		if len(want) == 0 || want[p.Category] {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	total := int64(len(out))
	skip := int(q.Skip())
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (m *memProducts) Update(_ context.Context, id string, ch model.ProductChanges) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.Description != nil {
		p.Description = *ch.Description
	}
	if ch.Category != nil {
		p.Category = *ch.Category
	}
	if ch.Price != nil {
		p.Price = *ch.Price
	}
	if ch.Stock != nil {
		p.Stock = *ch.Stock
	}
	if ch.ImageURL != nil {
		p.ImageURL = *ch.ImageURL
	}
	p.UpdatedBy = ch.UpdatedBy
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *memProducts) Delete(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(m.items, id)
	return p, nil
}

type memAuditor struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (a *memAuditor) Record(e model.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}
