package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/google/uuid"
)

// PropertyRepository resolves and registers properties.
type PropertyRepository struct {
	db DBTX
}

// NewPropertyRepository constructs a PropertyRepository.
func NewPropertyRepository(db DBTX) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// GetProperty returns a single property or ErrNotFound.
func (r *PropertyRepository) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var p model.Property
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, address, city FROM properties WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.OwnerID, &p.Address, &p.City)
	if err != nil {
		return nil, wrapNotFound("get property", err)
	}
	return &p, nil
}

// Create registers a property and returns it with a generated UUID.
func (r *PropertyRepository) Create(ctx context.Context, ownerID, address, city string) (*model.Property, error) {
	p := &model.Property{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Address: address,
		City:    city,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO properties (id, owner_id, address, city) VALUES ($1, $2, $3, $4)`,
		p.ID, p.OwnerID, p.Address, p.City,
	)
	if err != nil {
		return nil, fmt.Errorf("insert property: %w", err)
	}
	return p, nil
}

// UserRepository resolves and registers users.
type UserRepository struct {
	db DBTX
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser returns a single user or ErrNotFound.
func (r *UserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT id, full_name FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FullName)
	if err != nil {
		return nil, wrapNotFound("get user", err)
	}
	return &u, nil
}

// Create registers a user and returns it with a generated UUID.
func (r *UserRepository) Create(ctx context.Context, fullName string) (*model.User, error) {
	u := &model.User{ID: uuid.New().String(), FullName: fullName}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, full_name) VALUES ($1, $2)`,
		u.ID, u.FullName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}
