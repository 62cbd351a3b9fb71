package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/handler"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository/memory"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/service"
)

type testServer struct {
	*httptest.Server
	store    *memory.ReservationStore
	owner    model.User
	tenant   model.User
	property model.Property
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := memory.NewDirectory()
	ts := &testServer{store: memory.NewReservationStore()}
	ts.owner = dir.AddUser(model.User{FullName: "Olga Owner"})
	ts.tenant = dir.AddUser(model.User{FullName: "Tomasz Tenant"})
	ts.property = dir.AddProperty(model.Property{OwnerID: ts.owner.ID})

	svc := service.NewBookingService(ts.store, dir, dir, service.Options{
		Now: func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) },
	})
	ts.Server = httptest.NewServer(handler.NewRouter(handler.NewReservationHandler(svc, nil), handler.RouterConfig{}))
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReservationCommands(t *testing.T) {
	ts := newTestServer(t)

	out, err := run(t, "reservation", "create", "--url", ts.URL,
		"--property", ts.property.ID, "--tenant", ts.tenant.ID,
		"--start", "2025-06-01", "--end", "2025-06-05")
	if err != nil {
		t.Fatalf("create: %v (%s)", err, out)
	}
	if !strings.Contains(out, "PENDING") || !strings.Contains(out, "2025-06-01 to 2025-06-05") {
		t.Errorf("unexpected create output: %s", out)
	}

	all, _ := ts.store.FindByTenant(t.Context(), ts.tenant.ID)
	if len(all) != 1 {
		t.Fatalf("expected one stored reservation, got %d", len(all))
	}
	id := all[0].ID

	out, err = run(t, "reservation", "list", "--url", ts.URL, "--tenant", ts.tenant.ID, "--status", "pending")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "STATUS") {
		t.Errorf("unexpected list output: %s", out)
	}

	out, err = run(t, "reservation", "status", "--url", ts.URL, id, "confirmed")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Reservation status updated to CONFIRMED") {
		t.Errorf("unexpected status output: %s", out)
	}

	_, err = run(t, "reservation", "delete", "--url", ts.URL, "--tenant", ts.tenant.ID, id)
	if err == nil || !strings.Contains(err.Error(), "cannot delete a processed reservation") {
		t.Errorf("expected delete to be refused, got %v", err)
	}
}

func TestReservationCreate_ConflictIsReported(t *testing.T) {
	ts := newTestServer(t)
	args := []string{"reservation", "create", "--url", ts.URL,
		"--property", ts.property.ID, "--tenant", ts.tenant.ID,
		"--start", "2025-06-01", "--end", "2025-06-05"}

	if _, err := run(t, args...); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := run(t, args...)
	if err == nil || !strings.Contains(err.Error(), "CONFLICT") {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestReservationCreate_BadDate(t *testing.T) {
	_, err := run(t, "reservation", "create", "--url", "http://127.0.0.1:1",
		"--property", "p", "--tenant", "t", "--start", "June 1st", "--end", "2025-06-05")
	if err == nil || !strings.Contains(err.Error(), "--start") {
		t.Errorf("expected a date flag error, got %v", err)
	}
}

func TestURLFromEnvironment(t *testing.T) {
	ts := newTestServer(t)
	t.Setenv("RENTALS_URL", ts.URL)

	out, err := run(t, "reservation", "list", "--tenant", ts.tenant.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No reservations found") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"serve": false, "migrate": false, "directory": false, "reservation": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %s command", name)
		}
	}
}
