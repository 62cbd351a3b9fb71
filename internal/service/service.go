// Package service implements the booking engine: interval validation, conflict
// detection, tenant and owner authorization, and the reservation state machine.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/apperror"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/logger"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Shivanand-hulikatti/rent-reservations/internal/service"

// PropertyDirectory resolves a property id to its record. Missing properties
// are reported as repository.ErrNotFound.
type PropertyDirectory interface {
	GetProperty(ctx context.Context, id string) (*model.Property, error)
}

// UserDirectory resolves a user id to its record. Missing users are reported
// as repository.ErrNotFound.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Options tunes a BookingService. The zero value is usable.
type Options struct {
	// IgnoreClosedStatuses stops REJECTED and CANCELLED reservations from
	// blocking new bookings. When false every reservation blocks.
	IgnoreClosedStatuses bool
	// Now is the clock used for "today" and creation timestamps.
	Now    func() time.Time
	Logger *slog.Logger
}

// BookingService orchestrates reservation operations.
type BookingService struct {
	store        repository.ReservationStore
	properties   PropertyDirectory
	users        UserDirectory
	ignoreClosed bool
	now          func() time.Time
	log          *slog.Logger

	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	store repository.ReservationStore,
	properties PropertyDirectory,
	users UserDirectory,
	opts Options,
) *BookingService {
	s := &BookingService{
		store:        store,
		properties:   properties,
		users:        users,
		ignoreClosed: opts.IgnoreClosedStatuses,
		now:          opts.Now,
		log:          opts.Logger,
		tracer:       otel.Tracer(instrumentationName),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logger.Discard()
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter("reservations.operations",
		metric.WithDescription("Booking engine operations by outcome"),
	)
	if err != nil {
		s.log.Warn("failed to register operations counter", "error", err)
		counter = noop.Int64Counter{}
	}
	s.outcomes = counter
	return s
}

// CreateReservation books a property for the requested dates. The new
// reservation starts PENDING.
func (s *BookingService) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (_ *model.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateReservation",
		trace.WithAttributes(attribute.String("property.id", req.PropertyID)))
	defer func() { s.finish(ctx, span, "create", err) }()

	if err := validateRange(req.StartDate, req.EndDate, s.today()); err != nil {
		return nil, err
	}

	prop, err := s.properties.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, lookupErr(err, apperror.ResourceProperty, "fetching property")
	}
	if _, err := s.users.GetUser(ctx, req.TenantID); err != nil {
		return nil, lookupErr(err, apperror.ResourceTenant, "fetching tenant")
	}

	interval := model.Interval{Start: *req.StartDate, End: *req.EndDate}
	var saved *model.Reservation
	err = s.store.WithPropertyLock(ctx, prop.ID, func(tx repository.ReservationStore) error {
		if err := s.checkAvailable(ctx, tx, prop.ID, interval, ""); err != nil {
			return err
		}
		if prop.OwnerID == req.TenantID {
			return apperror.Forbidden("owner cannot reserve their own property")
		}

		var err error
		saved, err = tx.Save(ctx, &model.Reservation{
			PropertyID: prop.ID,
			TenantID:   req.TenantID,
			Interval:   interval,
			Status:     model.StatusPending,
			CreatedAt:  s.now().UTC(),
		})
		if err != nil {
			return apperror.Unexpected("saving reservation", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "creating reservation")
	}

	logger.FromContext(ctx, s.log).Info("reservation created",
		"reservation_id", saved.ID,
		"property_id", saved.PropertyID,
		"tenant_id", saved.TenantID,
		"start_date", saved.Interval.Start.String(),
		"end_date", saved.Interval.End.String(),
	)
	return saved, nil
}

// TransitionStatus moves a reservation along the state machine.
func (s *BookingService) TransitionStatus(ctx context.Context, id string, next model.Status) (_ string, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.TransitionStatus",
		trace.WithAttributes(attribute.String("reservation.id", id), attribute.String("status", string(next))))
	defer func() { s.finish(ctx, span, "transition", err) }()

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return "", lookupErr(err, apperror.ResourceReservation, "fetching reservation")
	}

	var prev model.Status
	err = s.store.WithPropertyLock(ctx, current.PropertyID, func(tx repository.ReservationStore) error {
		r, err := tx.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, apperror.ResourceReservation, "fetching reservation")
		}
		if err := model.CheckTransition(r.Status, next); err != nil {
			return apperror.InvalidTransition(err.Error())
		}

		prev = r.Status
		r.Status = next
		if _, err := tx.Save(ctx, r); err != nil {
			return saveErr(err)
		}
		return nil
	})
	if err != nil {
		return "", classify(err, "updating reservation status")
	}

	logger.FromContext(ctx, s.log).Info("reservation status changed",
		"reservation_id", id, "from", prev, "to", next)
	return "Reservation status updated to " + string(next), nil
}

// UpdateReservation changes the dates of a tenant's pending reservation.
// Absent fields keep their current values.
func (s *BookingService) UpdateReservation(ctx context.Context, id, tenantID string, req model.UpdateReservationRequest) (_ string, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.UpdateReservation",
		trace.WithAttributes(attribute.String("reservation.id", id)))
	defer func() { s.finish(ctx, span, "update", err) }()

	current, err := s.store.FindByIDAndTenant(ctx, id, tenantID)
	if err != nil {
		return "", lookupErr(err, apperror.ResourceReservation, "fetching reservation")
	}

	err = s.store.WithPropertyLock(ctx, current.PropertyID, func(tx repository.ReservationStore) error {
		r, err := tx.FindByIDAndTenant(ctx, id, tenantID)
		if err != nil {
			return lookupErr(err, apperror.ResourceReservation, "fetching reservation")
		}
		if !r.IsPending() {
			return apperror.InvalidState("cannot modify a processed reservation")
		}

		start, end := r.Interval.Start, r.Interval.End
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if req.EndDate != nil {
			end = *req.EndDate
		}
		if err := validateRange(&start, &end, s.today()); err != nil {
			return err
		}

		interval := model.Interval{Start: start, End: end}
		if err := s.checkAvailable(ctx, tx, r.PropertyID, interval, r.ID); err != nil {
			return err
		}

		r.Interval = interval
		if _, err := tx.Save(ctx, r); err != nil {
			return saveErr(err)
		}
		return nil
	})
	if err != nil {
		return "", classify(err, "updating reservation")
	}

	logger.FromContext(ctx, s.log).Info("reservation updated", "reservation_id", id)
	return "Reservation updated successfully", nil
}

// DeleteReservation removes a tenant's pending reservation.
func (s *BookingService) DeleteReservation(ctx context.Context, id, tenantID string) (_ string, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.DeleteReservation",
		trace.WithAttributes(attribute.String("reservation.id", id)))
	defer func() { s.finish(ctx, span, "delete", err) }()

	current, err := s.store.FindByIDAndTenant(ctx, id, tenantID)
	if err != nil {
		return "", lookupErr(err, apperror.ResourceReservation, "fetching reservation")
	}

	err = s.store.WithPropertyLock(ctx, current.PropertyID, func(tx repository.ReservationStore) error {
		r, err := tx.FindByIDAndTenant(ctx, id, tenantID)
		if err != nil {
			return lookupErr(err, apperror.ResourceReservation, "fetching reservation")
		}
		if !r.IsPending() {
			return apperror.InvalidState("cannot delete a processed reservation")
		}
		if err := tx.Delete(ctx, r.ID); err != nil {
			return lookupErr(err, apperror.ResourceReservation, "deleting reservation")
		}
		return nil
	})
	if err != nil {
		return "", classify(err, "deleting reservation")
	}

	logger.FromContext(ctx, s.log).Info("reservation deleted", "reservation_id", id)
	return "Reservation deleted successfully", nil
}

// ListForTenant returns every reservation made by the tenant.
func (s *BookingService) ListForTenant(ctx context.Context, tenantID string) (_ []model.ReservationResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ListForTenant")
	defer func() { s.finish(ctx, span, "list_tenant", err) }()

	rs, err := s.store.FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperror.Unexpected("fetching reservations", err)
	}
	return s.newProjector().all(ctx, rs)
}

// ListForTenantByStatus returns the tenant's reservations in the given status.
func (s *BookingService) ListForTenantByStatus(ctx context.Context, tenantID string, status model.Status) (_ []model.ReservationResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ListForTenantByStatus",
		trace.WithAttributes(attribute.String("status", string(status))))
	defer func() { s.finish(ctx, span, "list_tenant", err) }()

	rs, err := s.store.FindByTenantAndStatus(ctx, tenantID, status)
	if err != nil {
		return nil, apperror.Unexpected("fetching reservations", err)
	}
	return s.newProjector().all(ctx, rs)
}

// GetForTenant returns one of the tenant's reservations.
func (s *BookingService) GetForTenant(ctx context.Context, id, tenantID string) (_ *model.ReservationResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.GetForTenant",
		trace.WithAttributes(attribute.String("reservation.id", id)))
	defer func() { s.finish(ctx, span, "get_tenant", err) }()

	r, err := s.store.FindByIDAndTenant(ctx, id, tenantID)
	if err != nil {
		return nil, lookupErr(err, apperror.ResourceReservation, "fetching reservation")
	}
	return s.newProjector().one(ctx, *r)
}

// ListForOwner returns the reservations of a property, provided ownerID owns it.
func (s *BookingService) ListForOwner(ctx context.Context, propertyID, ownerID string) (_ []model.ReservationResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.ListForOwner",
		trace.WithAttributes(attribute.String("property.id", propertyID)))
	defer func() { s.finish(ctx, span, "list_owner", err) }()

	if _, err := s.ownedProperty(ctx, propertyID, ownerID); err != nil {
		return nil, err
	}
	rs, err := s.store.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, apperror.Unexpected("fetching reservations", err)
	}
	return s.newProjector().all(ctx, rs)
}

// GetForOwner returns a reservation on one of the owner's properties.
func (s *BookingService) GetForOwner(ctx context.Context, id, ownerID string) (_ *model.ReservationResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.GetForOwner",
		trace.WithAttributes(attribute.String("reservation.id", id)))
	defer func() { s.finish(ctx, span, "get_owner", err) }()

	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperror.ResourceReservation, "fetching reservation")
	}
	if _, err := s.ownedProperty(ctx, r.PropertyID, ownerID); err != nil {
		return nil, err
	}
	return s.newProjector().one(ctx, *r)
}

func (s *BookingService) ownedProperty(ctx context.Context, propertyID, ownerID string) (*model.Property, error) {
	prop, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, lookupErr(err, apperror.ResourceProperty, "fetching property")
	}
	if prop.OwnerID != ownerID {
		return nil, apperror.Forbidden("you are not the owner of this property")
	}
	return prop, nil
}

func (s *BookingService) checkAvailable(ctx context.Context, store repository.ReservationStore, propertyID string, in model.Interval, excludeID string) error {
	f := model.OverlapFilter{ExcludeID: excludeID}
	if s.ignoreClosed {
		f.IgnoreStatuses = model.ClosedStatuses
	}
	overlapping, err := store.FindOverlapping(ctx, propertyID, in, f)
	if err != nil {
		return apperror.Unexpected("checking availability", err)
	}
	if len(overlapping) > 0 {
		return apperror.Conflict("property is not available for the selected dates")
	}
	return nil
}

func (s *BookingService) today() model.Date {
	return model.DateOf(s.now().UTC())
}

// finish records the operation outcome and closes its span.
func (s *BookingService) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperror.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if outcome == string(apperror.KindUnexpected) {
			logger.FromContext(ctx, s.log).Error("booking operation failed", "op", op, "error", err)
		}
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	span.End()
}

// validateRange applies the interval rules in order: presence, ordering,
// past dates, then same-day.
func validateRange(start, end *model.Date, today model.Date) error {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return apperror.InvalidRange("start date and end date are required")
	}
	if start.After(*end) {
		return apperror.InvalidRange("start date cannot be after end date")
	}
	if start.Before(today) || end.Before(today) {
		return apperror.InvalidRange("start date or end date cannot be in the past")
	}
	if start.Equal(*end) {
		return apperror.InvalidRange("start date and end date cannot be the same")
	}
	return nil
}

// lookupErr turns a store miss into NotFound(r) and anything else into Unexpected.
func lookupErr(err error, r apperror.Resource, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(r)
	}
	return apperror.Unexpected(op, err)
}

func saveErr(err error) error {
	return lookupErr(err, apperror.ResourceReservation, "saving reservation")
}

// classify leaves engine errors untouched and wraps transaction failures.
func classify(err error, op string) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Unexpected(op, err)
}
