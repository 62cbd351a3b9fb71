package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

var reservationCols = []string{"id", "property_id", "tenant_id", "start_date", "end_date", "status", "created_at"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestFindByID_Success(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	createdAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, property_id, tenant_id, start_date, end_date, status, created_at FROM reservations WHERE id = \$1`).
		WithArgs("res-1").
		WillReturnRows(pgxmock.NewRows(reservationCols).AddRow(
			"res-1", "prop-1", "tenant-1",
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			"CONFIRMED", createdAt,
		))

	res, err := repo.FindByID(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if res.PropertyID != "prop-1" || res.TenantID != "tenant-1" {
		t.Errorf("unexpected ids: %+v", res)
	}
	if !res.Interval.Start.Equal(model.NewDate(2025, 6, 1)) || !res.Interval.End.Equal(model.NewDate(2025, 6, 5)) {
		t.Errorf("unexpected interval: %+v", res.Interval)
	}
	if res.Status != model.StatusConfirmed {
		t.Errorf("got status %s, want CONFIRMED", res.Status)
	}
	if !res.CreatedAt.Equal(createdAt) {
		t.Errorf("got created_at %v, want %v", res.CreatedAt, createdAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByIDAndTenant_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	mock.ExpectQuery(`FROM reservations WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs("res-1", "someone-else").
		WillReturnError(pgx.ErrNoRows)

	res, err := repo.FindByIDAndTenant(context.Background(), "res-1", "someone-else")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if res != nil {
		t.Error("expected nil reservation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByID_DatabaseError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`FROM reservations WHERE id = \$1`).
		WithArgs("res-1").
		WillReturnError(dbErr)

	_, err := repo.FindByID(context.Background(), "res-1")
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("db failures must not look like not found")
	}
}

func TestFindOverlapping_BuildsFilter(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	in := model.Interval{Start: model.NewDate(2025, 6, 2), End: model.NewDate(2025, 6, 4)}
	filter := model.OverlapFilter{ExcludeID: "res-self", IgnoreStatuses: model.ClosedStatuses}

	mock.ExpectQuery(`WHERE property_id = \$1 AND start_date < \$3 AND \$2 < end_date AND id <> \$4 AND NOT \(status = ANY\(\$5\)\) ORDER BY start_date ASC`).
		WithArgs("prop-1", in.Start.Time(), in.End.Time(), "res-self", []string{"REJECTED", "CANCELLED"}).
		WillReturnRows(pgxmock.NewRows(reservationCols).AddRow(
			"res-2", "prop-1", "tenant-2",
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			"PENDING", time.Now(),
		))

	got, err := repo.FindOverlapping(context.Background(), "prop-1", in, filter)
	if err != nil {
		t.Fatalf("FindOverlapping failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "res-2" {
		t.Errorf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindOverlapping_LiteralFilter(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	in := model.Interval{Start: model.NewDate(2025, 6, 2), End: model.NewDate(2025, 6, 4)}

	mock.ExpectQuery(`WHERE property_id = \$1 AND start_date < \$3 AND \$2 < end_date ORDER BY start_date ASC`).
		WithArgs("prop-1", in.Start.Time(), in.End.Time()).
		WillReturnRows(pgxmock.NewRows(reservationCols))

	got, err := repo.FindOverlapping(context.Background(), "prop-1", in, model.OverlapFilter{})
	if err != nil {
		t.Fatalf("FindOverlapping failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no overlaps, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_InsertAssignsID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	res := &model.Reservation{
		PropertyID: "prop-1",
		TenantID:   "tenant-1",
		Interval:   model.Interval{Start: model.NewDate(2025, 6, 1), End: model.NewDate(2025, 6, 5)},
		Status:     model.StatusPending,
		CreatedAt:  time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO reservations`).
		WithArgs(pgxmock.AnyArg(), "prop-1", "tenant-1", res.Interval.Start.Time(), res.Interval.End.Time(), "PENDING", res.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := repo.Save(context.Background(), res)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected generated id")
	}
	if res.ID != "" {
		t.Error("Save must not mutate its argument")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_UpdateMissingRow(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	res := &model.Reservation{
		ID:       "gone",
		Interval: model.Interval{Start: model.NewDate(2025, 6, 1), End: model.NewDate(2025, 6, 5)},
		Status:   model.StatusConfirmed,
	}
	mock.ExpectExec(`UPDATE reservations SET start_date = \$2, end_date = \$3, status = \$4 WHERE id = \$1`).
		WithArgs("gone", res.Interval.Start.Time(), res.Interval.End.Time(), "CONFIRMED").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if _, err := repo.Save(context.Background(), res); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	mock.ExpectExec(`DELETE FROM reservations WHERE id = \$1`).
		WithArgs("res-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), "res-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestWithPropertyLock_Commits(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtextextended\(\$1, 0\)\)`).
		WithArgs("prop-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`DELETE FROM reservations WHERE id = \$1`).
		WithArgs("res-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := repo.WithPropertyLock(context.Background(), "prop-1", func(tx ReservationStore) error {
		return tx.Delete(context.Background(), "res-1")
	})
	if err != nil {
		t.Fatalf("WithPropertyLock failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestWithPropertyLock_RollsBackOnError(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	fnErr := errors.New("property is not available")

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs("prop-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectRollback()

	err := repo.WithPropertyLock(context.Background(), "prop-1", func(ReservationStore) error {
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Errorf("expected fn error to surface, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetProperty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPropertyRepository(mock)

	mock.ExpectQuery(`SELECT id, owner_id, address, city FROM properties WHERE id = \$1`).
		WithArgs("prop-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "address", "city"}).
			AddRow("prop-1", "owner-1", "Piotrkowska 1", "Lodz"))
	mock.ExpectQuery(`FROM properties WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.GetProperty(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if p.OwnerID != "owner-1" {
		t.Errorf("got owner %s, want owner-1", p.OwnerID)
	}

	if _, err := repo.GetProperty(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`INSERT INTO users \(id, full_name\) VALUES \(\$1, \$2\)`).
		WithArgs(pgxmock.AnyArg(), "Jan Kowalski").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	u, err := repo.Create(context.Background(), "Jan Kowalski")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mock.ExpectQuery(`SELECT id, full_name FROM users WHERE id = \$1`).
		WithArgs(u.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name"}).AddRow(u.ID, "Jan Kowalski"))

	got, err := repo.GetUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.FullName != "Jan Kowalski" {
		t.Errorf("got name %q", got.FullName)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
