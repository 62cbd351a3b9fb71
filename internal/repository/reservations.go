package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReservationStore persists reservations and answers the queries the booking engine needs.
// Missing rows are reported as ErrNotFound.
type ReservationStore interface {
	FindOverlapping(ctx context.Context, propertyID string, in model.Interval, f model.OverlapFilter) ([]model.Reservation, error)
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByIDAndTenant(ctx context.Context, id, tenantID string) (*model.Reservation, error)
	FindByTenant(ctx context.Context, tenantID string) ([]model.Reservation, error)
	FindByTenantAndStatus(ctx context.Context, tenantID string, status model.Status) ([]model.Reservation, error)
	FindByProperty(ctx context.Context, propertyID string) ([]model.Reservation, error)

	// Save inserts a reservation without an ID (assigning one) or updates the
	// dates and status of an existing one.
	Save(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	Delete(ctx context.Context, id string) error

	// WithPropertyLock runs fn while holding the property's booking lock.
	// Writes made through the store passed to fn are committed only if fn returns nil.
	WithPropertyLock(ctx context.Context, propertyID string, fn func(ReservationStore) error) error
}

const reservationColumns = `id, property_id, tenant_id, start_date, end_date, status, created_at`

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db   DBTX
	pool Pool // nil when bound to a transaction
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(pool Pool) *ReservationRepository {
	return &ReservationRepository{db: pool, pool: pool}
}

// WithPropertyLock serialises booking decisions per property.
//
// Checking for overlaps and then inserting is a check-then-act sequence: two
// transactions can both find the dates free before either commits, and the
// property ends up double-booked. Every create/update/transition/delete on a
// property therefore runs inside a transaction that first takes
//
//	pg_advisory_xact_lock(hashtextextended(property_id, 0))
//
// A second transaction for the same property blocks on the lock until the
// first commits or rolls back, and only then runs its own overlap query,
// which now sees the committed row. The lock is released automatically at
// transaction end. Different properties never contend.
func (r *ReservationRepository) WithPropertyLock(ctx context.Context, propertyID string, fn func(ReservationStore) error) (err error) {
	if r.pool == nil {
		// Already inside a transaction; the advisory lock is re-entrant.
		if err := lockProperty(ctx, r.db, propertyID); err != nil {
			return err
		}
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockProperty(ctx, tx, propertyID); err != nil {
		return err
	}

	if err = fn(&ReservationRepository{db: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func lockProperty(ctx context.Context, db DBTX, propertyID string) error {
	if _, err := db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, propertyID); err != nil {
		return fmt.Errorf("lock property: %w", err)
	}
	return nil
}

// FindOverlapping returns reservations on the property whose interval overlaps in.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, propertyID string, in model.Interval, f model.OverlapFilter) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		 FROM reservations
		 WHERE property_id = $1 AND start_date < $3 AND $2 < end_date`
	args := []any{propertyID, in.Start.Time(), in.End.Time()}

	if f.ExcludeID != "" {
		args = append(args, f.ExcludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	if len(f.IgnoreStatuses) > 0 {
		statuses := make([]string, len(f.IgnoreStatuses))
		for i, s := range f.IgnoreStatuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND NOT (status = ANY($%d))", len(args))
	}
	query += " ORDER BY start_date ASC"

	return r.list(ctx, "find overlapping reservations", query, args...)
}

// FindByID returns a single reservation or ErrNotFound.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`,
		id,
	)
	res, err := scanReservation(row)
	if err != nil {
		return nil, wrapNotFound("get reservation", err)
	}
	return res, nil
}

// FindByIDAndTenant returns the reservation only if it belongs to tenantID.
func (r *ReservationRepository) FindByIDAndTenant(ctx context.Context, id, tenantID string) (*model.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
	res, err := scanReservation(row)
	if err != nil {
		return nil, wrapNotFound("get tenant reservation", err)
	}
	return res, nil
}

// FindByTenant returns all reservations of a tenant, newest stay first.
func (r *ReservationRepository) FindByTenant(ctx context.Context, tenantID string) ([]model.Reservation, error) {
	return r.list(ctx, "list tenant reservations",
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE tenant_id = $1
		 ORDER BY start_date DESC`,
		tenantID,
	)
}

// FindByTenantAndStatus returns a tenant's reservations in the given status.
func (r *ReservationRepository) FindByTenantAndStatus(ctx context.Context, tenantID string, status model.Status) ([]model.Reservation, error) {
	return r.list(ctx, "list tenant reservations by status",
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE tenant_id = $1 AND status = $2
		 ORDER BY start_date DESC`,
		tenantID, string(status),
	)
}

// FindByProperty returns all reservations on a property in calendar order.
func (r *ReservationRepository) FindByProperty(ctx context.Context, propertyID string) ([]model.Reservation, error) {
	return r.list(ctx, "list property reservations",
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE property_id = $1
		 ORDER BY start_date ASC`,
		propertyID,
	)
}

// Save inserts or updates a reservation.
func (r *ReservationRepository) Save(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	out := *res
	if out.ID == "" {
		out.ID = uuid.New().String()
		if out.CreatedAt.IsZero() {
			out.CreatedAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO reservations (`+reservationColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			out.ID, out.PropertyID, out.TenantID, out.Interval.Start.Time(), out.Interval.End.Time(), string(out.Status), out.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert reservation: %w", err)
		}
		return &out, nil
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE reservations SET start_date = $2, end_date = $3, status = $4 WHERE id = $1`,
		out.ID, out.Interval.Start.Time(), out.Interval.End.Time(), string(out.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &out, nil
}

// Delete removes a reservation.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		res        model.Reservation
		start, end time.Time
		status     string
	)
	if err := row.Scan(&res.ID, &res.PropertyID, &res.TenantID, &start, &end, &status, &res.CreatedAt); err != nil {
		return nil, err
	}
	res.Interval = model.Interval{Start: model.DateOf(start), End: model.DateOf(end)}
	res.Status = model.Status(status)
	return &res, nil
}
