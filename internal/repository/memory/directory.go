package memory

import (
	"context"
	"sync"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository"
	"github.com/google/uuid"
)

// Directory resolves properties and users from maps.
type Directory struct {
	mu         sync.RWMutex
	properties map[string]model.Property
	users      map[string]model.User
}

func NewDirectory() *Directory {
	return &Directory{
		properties: make(map[string]model.Property),
		users:      make(map[string]model.User),
	}
}

// AddUser registers a user, generating an id when u.ID is empty.
func (d *Directory) AddUser(u model.User) model.User {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	d.mu.Lock()
	d.users[u.ID] = u
	d.mu.Unlock()
	return u
}

// AddProperty registers a property, generating an id when p.ID is empty.
func (d *Directory) AddProperty(p model.Property) model.Property {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	d.mu.Lock()
	d.properties[p.ID] = p
	d.mu.Unlock()
	return p
}

func (d *Directory) GetProperty(_ context.Context, id string) (*model.Property, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.properties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (d *Directory) GetUser(_ context.Context, id string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
