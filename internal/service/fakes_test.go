package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/queue"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/upload"
)

var nopLog = zerolog.Nop()

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.ID = bson.NewObjectID()
	cp := *u
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID.Hex() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeRevoker struct {
	revoked map[string]time.Time
}

func (f *fakeRevoker) Revoke(_ context.Context, id string, exp time.Time) error {
	f.revoked[id] = exp
	return nil
}

type fakeProducts struct {
	mu        sync.Mutex
	items     map[string]*model.Product
	calls     int
	insertErr error
	updateErr error
}

func newFakeProducts() *fakeProducts { return &fakeProducts{items: map[string]*model.Product{}} }

func (f *fakeProducts) Insert(_ context.Context, p *model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.insertErr != nil {
		return f.insertErr
	}
	p.ID = bson.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.items[p.ID.Hex()] = &cp
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) List(_ context.Context, q repository.ProductQuery) ([]model.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []model.Product
	for _, p := range f.items {
		out = append(out, *p)
	}
	total := int64(len(out))
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (f *fakeProducts) Update(_ context.Context, id string, ch model.ProductChanges) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.items[id]
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

func (f *fakeProducts) Delete(_ context.Context, id string) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	delete(f.items, id)
	return p, nil
}

type fakeImages struct {
	mu        sync.Mutex
	n         int
	stored    map[string]bool
	released  []string
	acceptErr error
}

func newFakeImages() *fakeImages { return &fakeImages{stored: map[string]bool{}} }

func (f *fakeImages) Accept(_ context.Context, _ *upload.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acceptErr != nil {
		return "", f.acceptErr
	}
	f.n++
	p := fmt.Sprintf("/uploads/products/product-%d.jpg", f.n)
	f.stored[p] = true
	return p, nil
}

func (f *fakeImages) Release(_ context.Context, p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, p)
	f.released = append(f.released, p)
}

type fakePublisher struct {
	mu   sync.Mutex
	got  []queue.AuditEvent
	err  error
	done chan struct{}
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.AuditEvent) error {
	f.mu.Lock()
	f.got = append(f.got, ev)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

var errBoom = errors.New("boom")
