package types

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentStatus string

const (
	StatusPending  AssessmentStatus = "Pending"
	StatusApproved AssessmentStatus = "Approved"
	StatusRejected AssessmentStatus = "Rejected"
)

// Answer is a typed checklist/verdict answer. The empty value means the
// question was left unanswered. Localized display strings (Ja/Nej and
// friends) are a presentation concern and never reach this layer.
type Answer string

const (
	AnswerUnanswered Answer = ""
	AnswerYes        Answer = "Yes"
	AnswerNo         Answer = "No"
)

func (a Answer) Valid() bool {
	return a == AnswerUnanswered || a == AnswerYes || a == AnswerNo
}

// Checklist is the ordered, fixed-length answer array. Position i always
// answers question i of the active catalog.
type Checklist []Answer

// Assessment is one high-risk work evaluation record. The derived fields
// (RiskScore, RequiresLeader, LeaderProvided) are computed once at creation
// from the stored inputs and never recomputed or mutated afterwards; the raw
// inputs stay on the row so the policy outcome is re-derivable for audit.
type Assessment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	WorkDate   string `gorm:"not null;column:work_date" json:"work_date"`
	WorkerName string `gorm:"not null;column:worker_name" json:"worker_name"`
	Team       string `gorm:"column:team" json:"team"`
	Location   string `gorm:"column:location" json:"location"`
	Task       string `gorm:"column:task" json:"task"`

	Probability int       `gorm:"not null;column:probability" json:"probability"`
	Consequence int       `gorm:"not null;column:consequence" json:"consequence"`
	RiskScore   int       `gorm:"not null;column:risk_score" json:"risk_score"`
	Risks       string    `gorm:"column:risks" json:"risks"`
	Checklist   Checklist `gorm:"serializer:json;not null;column:checklist" json:"checklist"`
	Actions     string    `gorm:"column:actions" json:"actions"`

	FurtherAction bool   `gorm:"not null;default:false;column:further_action" json:"further_action"`
	FullAnalysis  bool   `gorm:"not null;default:false;column:full_analysis" json:"full_analysis"`
	Safe          Answer `gorm:"not null;column:safe" json:"safe"`

	Leader    string `gorm:"column:leader" json:"leader"`
	Signature string `gorm:"column:signature" json:"signature"`

	RequiresLeader bool `gorm:"not null;column:requires_leader" json:"requires_leader"`
	LeaderProvided bool `gorm:"not null;column:leader_provided" json:"leader_provided"`

	Status     AssessmentStatus `gorm:"not null;default:'Pending';column:status" json:"status"`
	ApprovedBy *uuid.UUID       `gorm:"type:uuid;column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time       `gorm:"column:approved_at" json:"approved_at,omitempty"`

	CreatedBy       uuid.UUID `gorm:"type:uuid;not null;index;column:created_by" json:"created_by"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
	ArchivableAfter time.Time `gorm:"not null;column:archivable_after" json:"archivable_after"`
	Archived        bool      `gorm:"not null;default:false;column:archived" json:"archived"`
}

func (Assessment) TableName() string {
	return "assessments"
}
