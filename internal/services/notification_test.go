package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/testutil"
)

func TestNotifications_ListCappedAndOrdered(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	notificationRepo := repos.NewNotificationRepo(gdb, log)
	service := NewNotificationService(gdb, log, notificationRepo, userRepo, nil)

	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	leader := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)

	assessments := NewAssessmentService(gdb, log, repos.NewAssessmentRepo(gdb, log), userRepo, service)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)
	for i := 0; i < 60; i++ {
		if _, err := assessments.Create(ctx, validInput()); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	rows, err := service.List(testutil.Ctx(leader.ID, leader.Name, access.RoleArbetsledare))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 50 {
		t.Fatalf("got %d notifications, want the 50-row window", len(rows))
	}
	// Newest first.
	for i := 1; i < len(rows); i++ {
		if rows[i].ID > rows[i-1].ID {
			t.Fatalf("rows out of order at %d: %d after %d", i, rows[i].ID, rows[i-1].ID)
		}
	}
}

func TestNotifications_MarkReadScopedToRecipient(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	notificationRepo := repos.NewNotificationRepo(gdb, log)
	service := NewNotificationService(gdb, log, notificationRepo, userRepo, nil)

	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	leader := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)

	assessments := NewAssessmentService(gdb, log, repos.NewAssessmentRepo(gdb, log), userRepo, service)
	if _, err := assessments.Create(testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall), validInput()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	leaderCtx := testutil.Ctx(leader.ID, leader.Name, access.RoleArbetsledare)
	rows, err := service.List(leaderCtx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("List: %v (%d rows)", err, len(rows))
	}

	// Someone else cannot mark it.
	strangerCtx := testutil.Ctx(uuid.New(), "X", access.RoleSupervisor)
	if err := service.MarkRead(strangerCtx, rows[0].ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for foreign recipient, got %v", err)
	}

	if err := service.MarkRead(leaderCtx, rows[0].ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	rows, err = service.List(leaderCtx)
	if err != nil {
		t.Fatalf("List (after): %v", err)
	}
	if !rows[0].Read {
		t.Fatalf("notification still unread")
	}
}

func TestNotifications_MarkAllReadIdempotent(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	notificationRepo := repos.NewNotificationRepo(gdb, log)
	service := NewNotificationService(gdb, log, notificationRepo, userRepo, nil)

	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	leader := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)

	assessments := NewAssessmentService(gdb, log, repos.NewAssessmentRepo(gdb, log), userRepo, service)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)
	for i := 0; i < 3; i++ {
		if _, err := assessments.Create(ctx, validInput()); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	leaderCtx := testutil.Ctx(leader.ID, leader.Name, access.RoleArbetsledare)
	if err := service.MarkAllRead(leaderCtx); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if err := service.MarkAllRead(leaderCtx); err != nil {
		t.Fatalf("MarkAllRead (repeat): %v", err)
	}

	rows, err := service.List(leaderCtx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, r := range rows {
		if !r.Read {
			t.Fatalf("notification %d still unread", r.ID)
		}
	}
}
