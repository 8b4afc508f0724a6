package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/db"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/requestdata"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

// DB opens a fresh in-memory database with the full schema migrated. Each
// call gets its own database, so tests never share state.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

// Ctx returns a context carrying the given caller identity.
func Ctx(userID uuid.UUID, name string, role access.Role) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
		Name:   name,
		Role:   role,
	})
}

func SeedUser(t *testing.T, gdb *gorm.DB, name string, role access.Role) *types.User {
	t.Helper()
	user := &types.User{
		ID:         uuid.New(),
		Subject:    uuid.NewString(),
		Name:       name,
		Role:       string(role),
		Active:     true,
		CreatedAt:  time.Now().UTC(),
		LastSeenAt: time.Now().UTC(),
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedAssessment inserts a minimal valid record owned by creator. Mutate the
// returned value and Save it for scenario-specific shapes.
func SeedAssessment(t *testing.T, gdb *gorm.DB, creator uuid.UUID, score int) *types.Assessment {
	t.Helper()
	probability, consequence := factorsFor(score)
	now := time.Now().UTC()
	a := &types.Assessment{
		WorkDate:        now.Format("2006-01-02"),
		WorkerName:      "Test Worker",
		Team:            "Team A",
		Location:        "Mill 1",
		Task:            "Conveyor maintenance",
		Probability:     probability,
		Consequence:     consequence,
		RiskScore:       score,
		Checklist:       make(types.Checklist, 10),
		Safe:            types.AnswerYes,
		Status:          types.StatusPending,
		CreatedBy:       creator,
		CreatedAt:       now,
		ArchivableAfter: now.AddDate(0, 0, 180),
	}
	if err := gdb.Create(a).Error; err != nil {
		t.Fatalf("seed assessment: %v", err)
	}
	return a
}

// factorsFor picks probability and consequence in range whose product is
// close to the requested score.
func factorsFor(score int) (int, int) {
	for p := 1; p <= 5; p++ {
		for k := 1; k <= 5; k++ {
			if p*k == score {
				return p, k
			}
		}
	}
	if score <= 1 {
		return 1, 1
	}
	if score >= 25 {
		return 5, 5
	}
	return 5, (score + 4) / 5
}
