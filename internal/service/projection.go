package service

import (
	"context"
	"errors"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/apperror"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/logger"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository"
)

// projector builds read views, resolving each tenant name at most once.
type projector struct {
	s     *BookingService
	names map[string]string
}

func (s *BookingService) newProjector() *projector {
	return &projector{s: s, names: make(map[string]string)}
}

func (p *projector) all(ctx context.Context, rs []model.Reservation) ([]model.ReservationResponse, error) {
	out := make([]model.ReservationResponse, 0, len(rs))
	for _, r := range rs {
		v, err := p.one(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (p *projector) one(ctx context.Context, r model.Reservation) (*model.ReservationResponse, error) {
	name, err := p.tenantName(ctx, r.TenantID)
	if err != nil {
		return nil, err
	}
	return &model.ReservationResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		TenantID:   r.TenantID,
		TenantName: name,
		StartDate:  r.Interval.Start,
		EndDate:    r.Interval.End,
		Status:     string(r.Status),
	}, nil
}

func (p *projector) tenantName(ctx context.Context, tenantID string) (string, error) {
	if name, ok := p.names[tenantID]; ok {
		return name, nil
	}
	u, err := p.s.users.GetUser(ctx, tenantID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.FromContext(ctx, p.s.log).Warn("tenant missing from user directory", "tenant_id", tenantID)
		p.names[tenantID] = ""
		return "", nil
	case err != nil:
		return "", apperror.Unexpected("fetching tenant", err)
	}
	p.names[tenantID] = u.FullName
	return u.FullName, nil
}
