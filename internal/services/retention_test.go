package services

import (
	"testing"
	"time"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/testutil"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

func TestRetention_ArchiveThenDelete(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewAssessmentRepo(gdb, log)
	service := NewRetentionService(gdb, log, repo)

	admin := testutil.SeedUser(t, gdb, "Admin", access.RoleAdmin)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	ctx := testutil.Ctx(admin.ID, admin.Name, access.RoleAdmin)

	// Delete before archive is refused.
	if err := service.Delete(ctx, a.ID); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error before archive, got %v", err)
	}

	archived, err := service.Archive(ctx, a.ID)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if !archived.Archived {
		t.Fatalf("row not flagged archived")
	}

	// Archiving again is a no-op, not an error.
	if _, err := service.Archive(ctx, a.ID); err != nil {
		t.Fatalf("Archive (repeat): %v", err)
	}

	if err := service.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, err := repo.GetByID(ctx, nil, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if gone != nil {
		t.Fatalf("row still present after delete")
	}
}

func TestRetention_PendingRecordCanArchive(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewAssessmentRepo(gdb, log)
	service := NewRetentionService(gdb, log, repo)

	admin := testutil.SeedUser(t, gdb, "Admin", access.RoleAdmin)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	if a.Status != types.StatusPending {
		t.Fatalf("fixture should be pending")
	}

	if _, err := service.Archive(testutil.Ctx(admin.ID, admin.Name, access.RoleAdmin), a.ID); err != nil {
		t.Fatalf("Archive of pending record: %v", err)
	}
}

func TestRetention_NonAdminForbidden(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewAssessmentRepo(gdb, log)
	service := NewRetentionService(gdb, log, repo)

	leader := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	ctx := testutil.Ctx(leader.ID, leader.Name, access.RoleArbetsledare)

	if _, err := service.Archive(ctx, a.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden archive, got %v", err)
	}
	if err := service.Delete(ctx, a.ID); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if _, err := service.ListArchivable(ctx); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden listing, got %v", err)
	}
}

func TestRetention_ListArchivable(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewAssessmentRepo(gdb, log)
	service := NewRetentionService(gdb, log, repo)

	admin := testutil.SeedUser(t, gdb, "Admin", access.RoleAdmin)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)

	aged := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	aged.ArchivableAfter = time.Now().UTC().AddDate(0, 0, -1)
	if err := gdb.Save(aged).Error; err != nil {
		t.Fatalf("age row: %v", err)
	}
	testutil.SeedAssessment(t, gdb, creator.ID, 6)

	eligible, err := service.ListArchivable(testutil.Ctx(admin.ID, admin.Name, access.RoleAdmin))
	if err != nil {
		t.Fatalf("ListArchivable: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != aged.ID {
		t.Fatalf("unexpected eligible rows: %+v", eligible)
	}
}
