package services

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/testutil"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

func newAssessmentFixture(t *testing.T) (*gorm.DB, AssessmentService, NotificationService, repos.NotificationRepo) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(gdb, log)
	assessmentRepo := repos.NewAssessmentRepo(gdb, log)
	notificationRepo := repos.NewNotificationRepo(gdb, log)
	notifications := NewNotificationService(gdb, log, notificationRepo, userRepo, nil)
	service := NewAssessmentService(gdb, log, assessmentRepo, userRepo, notifications)
	return gdb, service, notifications, notificationRepo
}

func validInput() CreateAssessmentInput {
	return CreateAssessmentInput{
		WorkDate:    "2026-08-20",
		WorkerName:  "Erik",
		Team:        "Team A",
		Location:    "Mill 1",
		Task:        "Pump swap",
		Probability: 2,
		Consequence: 3,
		Safe:        types.AnswerYes,
	}
}

func TestCreateAssessment_LowRiskNeedsNoLeader(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)

	result, err := service.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.RiskScore != 6 {
		t.Fatalf("score %d, want 6", result.RiskScore)
	}
	if result.RequiresLeader {
		t.Fatalf("score 6 should not require a leader")
	}
	if result.Status != types.StatusPending {
		t.Fatalf("status %s, want Pending", result.Status)
	}
}

func TestCreateAssessment_HighScoreDemandsLeader(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)

	in := validInput()
	in.Probability = 5
	in.Consequence = 3

	_, err := service.Create(ctx, in)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	in.Leader = "Anna"
	in.Signature = "AL"
	result, err := service.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create with leader: %v", err)
	}
	if result.RiskScore != 15 || !result.RequiresLeader || !result.LeaderProvided {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCreateAssessment_ChecklistNoDemandsLeader(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)

	in := validInput()
	in.Checklist = types.Checklist{types.AnswerYes, types.AnswerNo}

	_, err := service.Create(ctx, in)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for missing leader, got %v", err)
	}
}

func TestCreateAssessment_RejectsBadInput(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)

	cases := []struct {
		name   string
		mutate func(*CreateAssessmentInput)
	}{
		{"missing work date", func(in *CreateAssessmentInput) { in.WorkDate = "" }},
		{"missing worker name", func(in *CreateAssessmentInput) { in.WorkerName = "" }},
		{"probability too low", func(in *CreateAssessmentInput) { in.Probability = 0 }},
		{"consequence too high", func(in *CreateAssessmentInput) { in.Consequence = 6 }},
		{"oversized checklist", func(in *CreateAssessmentInput) { in.Checklist = make(types.Checklist, 11) }},
		{"bad checklist answer", func(in *CreateAssessmentInput) { in.Checklist = types.Checklist{"Maybe"} }},
		{"blank safety verdict", func(in *CreateAssessmentInput) { in.Safe = types.AnswerUnanswered }},
	}
	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := service.Create(ctx, in); apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateAssessment_FansOutToPendingRecipients(t *testing.T) {
	gdb, service, _, notificationRepo := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	leader := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)
	// Supervisors are not in the default pending recipient set.
	testutil.SeedUser(t, gdb, "Sam", access.RoleSupervisor)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)

	result, err := service.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := notificationRepo.CountByAssessment(context.Background(), nil, result.ID)
	if err != nil {
		t.Fatalf("CountByAssessment: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d notifications, want 1", count)
	}

	rows, err := notificationRepo.ListByRecipient(context.Background(), nil, leader.ID, 50)
	if err != nil {
		t.Fatalf("ListByRecipient: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != types.NotificationAssessmentPending {
		t.Fatalf("unexpected notifications: %+v", rows)
	}
}

func TestTransition_ApproveNotifiesCreator(t *testing.T) {
	gdb, service, _, notificationRepo := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	approver := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)

	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	ctx := testutil.Ctx(approver.ID, approver.Name, access.RoleArbetsledare)

	if err := service.Transition(ctx, a.ID, types.StatusApproved, ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	rows, err := notificationRepo.ListByRecipient(context.Background(), nil, creator.ID, 50)
	if err != nil {
		t.Fatalf("ListByRecipient: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != types.NotificationAssessmentApproved {
		t.Fatalf("unexpected notifications: %+v", rows)
	}
}

func TestTransition_RejectCarriesReason(t *testing.T) {
	gdb, service, _, notificationRepo := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	approver := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)

	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	ctx := testutil.Ctx(approver.ID, approver.Name, access.RoleArbetsledare)

	if err := service.Transition(ctx, a.ID, types.StatusRejected, "scaffolding missing"); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	rows, err := notificationRepo.ListByRecipient(context.Background(), nil, creator.ID, 50)
	if err != nil {
		t.Fatalf("ListByRecipient: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d notifications, want 1", len(rows))
	}
	if rows[0].Type != types.NotificationAssessmentRejected {
		t.Fatalf("type %s, want rejected", rows[0].Type)
	}
	if want := "scaffolding missing"; !strings.Contains(rows[0].Message, want) {
		t.Fatalf("message %q does not mention %q", rows[0].Message, want)
	}
}

func TestTransition_SecondDecisionConflicts(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	approver := testutil.SeedUser(t, gdb, "Anna", access.RoleArbetsledare)

	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	ctx := testutil.Ctx(approver.ID, approver.Name, access.RoleArbetsledare)

	if err := service.Transition(ctx, a.ID, types.StatusApproved, ""); err != nil {
		t.Fatalf("first Transition: %v", err)
	}
	err := service.Transition(ctx, a.ID, types.StatusRejected, "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestTransition_SubmitterRoleForbidden(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	creator := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	a := testutil.SeedAssessment(t, gdb, creator.ID, 6)
	ctx := testutil.Ctx(creator.ID, creator.Name, access.RoleUnderhall)

	err := service.Transition(ctx, a.ID, types.StatusApproved, "")
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestList_SubmitterSeesOnlyOwn(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	mine := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	other := testutil.SeedUser(t, gdb, "Lia", access.RoleUnderhall)
	testutil.SeedAssessment(t, gdb, mine.ID, 4)
	testutil.SeedAssessment(t, gdb, other.ID, 4)

	views, err := service.List(testutil.Ctx(mine.ID, mine.Name, access.RoleUnderhall), ListAssessmentsFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].CreatedBy != mine.ID {
		t.Fatalf("unexpected listing: %+v", views)
	}
	if views[0].CreatedByName != "Erik" {
		t.Fatalf("creator name %q, want Erik", views[0].CreatedByName)
	}

	all, err := service.List(testutil.Ctx(other.ID, other.Name, access.RoleAdmin), ListAssessmentsFilter{})
	if err != nil {
		t.Fatalf("List (admin): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin listing: got %d, want 2", len(all))
	}
}

func TestGet_OwnershipGate(t *testing.T) {
	gdb, service, _, _ := newAssessmentFixture(t)
	owner := testutil.SeedUser(t, gdb, "Erik", access.RoleUnderhall)
	stranger := testutil.SeedUser(t, gdb, "Lia", access.RoleUnderhall)
	a := testutil.SeedAssessment(t, gdb, owner.ID, 4)

	if _, err := service.Get(testutil.Ctx(owner.ID, owner.Name, access.RoleUnderhall), a.ID); err != nil {
		t.Fatalf("Get (owner): %v", err)
	}

	_, err := service.Get(testutil.Ctx(stranger.ID, stranger.Name, access.RoleUnderhall), a.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = service.Get(testutil.Ctx(stranger.ID, stranger.Name, access.RoleSupervisor), a.ID)
	if err != nil {
		t.Fatalf("Get (supervisor): %v", err)
	}
}
