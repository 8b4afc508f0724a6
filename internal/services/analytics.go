package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/access"
	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
	"github.com/tbamaint/hogrisk-backend/internal/requestdata"
	"github.com/tbamaint/hogrisk-backend/internal/risk"
	"github.com/tbamaint/hogrisk-backend/internal/types"
)

const (
	defaultDashboardWindowDays = 30
	defaultExportWindowDays    = 90
	timePatternWindowDays      = 90
	seasonalWindowMonths       = 12
	trendMaxDates              = 30

	// Grouping floors: sparser groups are noise, not pattern.
	patternMinCount = 3
	timeMinCount    = 5

	// Recommendation triggers.
	recommendLocationMinCount = 5
	recommendTimeAvgScore     = 8
)

type GroupBreakdown struct {
	Name          string  `json:"name"`
	Count         int     `json:"count"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	HighRiskCount int     `json:"high_risk_count"`
	ApprovedCount int     `json:"approved_count"`
}

type DailyPoint struct {
	Date          string  `json:"date"`
	Count         int     `json:"count"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	HighRiskCount int     `json:"high_risk_count"`
}

type ChecklistFailure struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Index      int    `json:"index"`
	NoCount    int    `json:"no_count"`
}

type LatencyStats struct {
	ApprovedCount int     `json:"approved_count"`
	AvgHours      float64 `json:"avg_hours"`
	MinHours      float64 `json:"min_hours"`
	MaxHours      float64 `json:"max_hours"`
}

type DashboardSnapshot struct {
	WindowDays        int                `json:"window_days"`
	TotalAssessments  int                `json:"total_assessments"`
	AvgRiskScore      float64            `json:"avg_risk_score"`
	LowRiskCount      int                `json:"low_risk_count"`
	MediumRiskCount   int                `json:"medium_risk_count"`
	HighRiskCount     int                `json:"high_risk_count"`
	PendingCount      int                `json:"pending_count"`
	ApprovedCount     int                `json:"approved_count"`
	RejectedCount     int                `json:"rejected_count"`
	MissingApprovals  int                `json:"missing_approvals"`
	Locations         []GroupBreakdown   `json:"locations"`
	Teams             []GroupBreakdown   `json:"teams"`
	DailyTrend        []DailyPoint       `json:"daily_trend"`
	ChecklistFailures []ChecklistFailure `json:"checklist_failures"`
	ApprovalLatency   LatencyStats       `json:"approval_latency"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

type HighRiskPattern struct {
	Location     string   `json:"location"`
	Team         string   `json:"team"`
	Count        int      `json:"count"`
	AvgRiskScore float64  `json:"avg_risk_score"`
	Tasks        []string `json:"tasks"`
}

type TimePattern struct {
	HourOfDay     int     `json:"hour_of_day"`
	DayOfWeek     int     `json:"day_of_week"`
	Count         int     `json:"count"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	HighRiskCount int     `json:"high_risk_count"`
}

type MonthlyPoint struct {
	Month         string  `json:"month"`
	Count         int     `json:"count"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	HighRiskCount int     `json:"high_risk_count"`
}

type Recommendation struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

type PredictiveReport struct {
	HighRiskPatterns []HighRiskPattern `json:"high_risk_patterns"`
	TimePatterns     []TimePattern     `json:"time_patterns"`
	SeasonalTrend    []MonthlyPoint    `json:"seasonal_trend"`
	Recommendations  []Recommendation  `json:"recommendations"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

type ExportRow struct {
	ID             uint   `json:"id"`
	WorkDate       string `json:"work_date"`
	WorkerName     string `json:"worker_name"`
	Team           string `json:"team"`
	Location       string `json:"location"`
	Task           string `json:"task"`
	Probability    int    `json:"probability"`
	Consequence    int    `json:"consequence"`
	RiskScore      int    `json:"risk_score"`
	Risks          string `json:"risks"`
	Checklist      string `json:"checklist"`
	Actions        string `json:"actions"`
	Safe           string `json:"safe"`
	Leader         string `json:"leader"`
	Signature      string `json:"signature"`
	RequiresLeader bool   `json:"requires_leader"`
	LeaderProvided bool   `json:"leader_provided"`
	Status         string `json:"status"`
	CreatedByName  string `json:"created_by_name"`
	CreatedAt      string `json:"created_at"`
	ApprovedAt     string `json:"approved_at"`
}

type ExportResult struct {
	Format string       `json:"format"`
	Rows   []*ExportRow `json:"rows,omitempty"`
	CSV    string       `json:"-"`
}

// AnalyticsService is read-only over the assessment collection. Aggregates
// never fail on empty input; they degrade to zeros and empty slices.
type AnalyticsService interface {
	Dashboard(ctx context.Context, windowDays int) (*DashboardSnapshot, error)
	Predictive(ctx context.Context) (*PredictiveReport, error)
	Export(ctx context.Context, windowDays int, format string) (*ExportResult, error)
}

type analyticsService struct {
	db             *gorm.DB
	log            *logger.Logger
	assessmentRepo repos.AssessmentRepo
	userRepo       repos.UserRepo
	catalog        []risk.Question
}

func NewAnalyticsService(db *gorm.DB, log *logger.Logger, assessmentRepo repos.AssessmentRepo, userRepo repos.UserRepo, catalog []risk.Question) AnalyticsService {
	serviceLog := log.With("service", "AnalyticsService")
	if len(catalog) == 0 {
		catalog = risk.DefaultCatalog()
	}
	return &analyticsService{
		db:             db,
		log:            serviceLog,
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		catalog:        catalog,
	}
}

func requireAnalyticsCaller(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apperr.Forbidden("no authenticated caller")
	}
	if !rd.Role.Can(access.CapViewAll) {
		return apperr.Forbidden("role %s may not read analytics", rd.Role)
	}
	return nil
}

func (s *analyticsService) Dashboard(ctx context.Context, windowDays int) (*DashboardSnapshot, error) {
	if err := requireAnalyticsCaller(ctx); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = defaultDashboardWindowDays
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	records, err := s.assessmentRepo.ListCreatedSince(ctx, nil, since)
	if err != nil {
		return nil, err
	}

	snap := &DashboardSnapshot{
		WindowDays:  windowDays,
		GeneratedAt: time.Now().UTC(),
	}

	scoreSum := 0
	for _, a := range records {
		snap.TotalAssessments++
		scoreSum += a.RiskScore
		switch {
		case a.RiskScore >= risk.HighRiskThreshold:
			snap.HighRiskCount++
		case a.RiskScore >= 5:
			snap.MediumRiskCount++
		default:
			snap.LowRiskCount++
		}
		switch a.Status {
		case types.StatusPending:
			snap.PendingCount++
		case types.StatusApproved:
			snap.ApprovedCount++
		case types.StatusRejected:
			snap.RejectedCount++
		}
		// Structurally impossible since creation refuses these, kept as a
		// consistency check over historical data.
		if a.RequiresLeader && !a.LeaderProvided {
			snap.MissingApprovals++
		}
	}
	if snap.TotalAssessments > 0 {
		snap.AvgRiskScore = float64(scoreSum) / float64(snap.TotalAssessments)
	}

	snap.Locations = groupBreakdown(records, func(a *types.Assessment) string { return a.Location })
	snap.Teams = groupBreakdown(records, func(a *types.Assessment) string { return a.Team })
	snap.DailyTrend = dailyTrend(records)
	snap.ChecklistFailures = s.checklistFailures(records)
	snap.ApprovalLatency = approvalLatency(records)

	return snap, nil
}

func groupBreakdown(records []*types.Assessment, key func(*types.Assessment) string) []GroupBreakdown {
	type agg struct {
		count, scoreSum, high, approved int
	}
	byKey := map[string]*agg{}
	for _, a := range records {
		k := key(a)
		if k == "" {
			continue
		}
		g := byKey[k]
		if g == nil {
			g = &agg{}
			byKey[k] = g
		}
		g.count++
		g.scoreSum += a.RiskScore
		if a.RiskScore >= risk.HighRiskThreshold {
			g.high++
		}
		if a.Status == types.StatusApproved {
			g.approved++
		}
	}

	out := make([]GroupBreakdown, 0, len(byKey))
	for k, g := range byKey {
		out = append(out, GroupBreakdown{
			Name:          k,
			Count:         g.count,
			AvgRiskScore:  float64(g.scoreSum) / float64(g.count),
			HighRiskCount: g.high,
			ApprovedCount: g.approved,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRiskScore != out[j].AvgRiskScore {
			return out[i].AvgRiskScore > out[j].AvgRiskScore
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func dailyTrend(records []*types.Assessment) []DailyPoint {
	type agg struct {
		count, scoreSum, high int
	}
	byDate := map[string]*agg{}
	for _, a := range records {
		d := a.CreatedAt.UTC().Format("2006-01-02")
		g := byDate[d]
		if g == nil {
			g = &agg{}
			byDate[d] = g
		}
		g.count++
		g.scoreSum += a.RiskScore
		if a.RiskScore >= risk.HighRiskThreshold {
			g.high++
		}
	}

	out := make([]DailyPoint, 0, len(byDate))
	for d, g := range byDate {
		out = append(out, DailyPoint{
			Date:          d,
			Count:         g.count,
			AvgRiskScore:  float64(g.scoreSum) / float64(g.count),
			HighRiskCount: g.high,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > trendMaxDates {
		out = out[:trendMaxDates]
	}
	return out
}

// checklistFailures counts No answers per question position. The catalog and
// the stored arrays share index order, so the pairing here is by position and
// the question id travels with every bucket.
func (s *analyticsService) checklistFailures(records []*types.Assessment) []ChecklistFailure {
	out := make([]ChecklistFailure, 0, len(s.catalog))
	for i, q := range s.catalog {
		count := 0
		for _, a := range records {
			if i < len(a.Checklist) && a.Checklist[i] == types.AnswerNo {
				count++
			}
		}
		out = append(out, ChecklistFailure{
			QuestionID: q.ID,
			Question:   q.Text,
			Index:      i,
			NoCount:    count,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NoCount > out[j].NoCount })
	return out
}

func approvalLatency(records []*types.Assessment) LatencyStats {
	var stats LatencyStats
	sum := 0.0
	for _, a := range records {
		if a.Status != types.StatusApproved || a.ApprovedAt == nil {
			continue
		}
		hours := a.ApprovedAt.Sub(a.CreatedAt).Hours()
		if stats.ApprovedCount == 0 || hours < stats.MinHours {
			stats.MinHours = hours
		}
		if stats.ApprovedCount == 0 || hours > stats.MaxHours {
			stats.MaxHours = hours
		}
		sum += hours
		stats.ApprovedCount++
	}
	if stats.ApprovedCount > 0 {
		stats.AvgHours = sum / float64(stats.ApprovedCount)
	}
	return stats
}

func (s *analyticsService) Predictive(ctx context.Context) (*PredictiveReport, error) {
	if err := requireAnalyticsCaller(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var highRisk, recent, yearly []*types.Assessment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		highRisk, err = s.assessmentRepo.ListHighRisk(gctx, nil, risk.HighRiskThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.assessmentRepo.ListCreatedSince(gctx, nil, now.AddDate(0, 0, -timePatternWindowDays))
		return err
	})
	g.Go(func() error {
		var err error
		yearly, err = s.assessmentRepo.ListCreatedSince(gctx, nil, now.AddDate(0, -seasonalWindowMonths, 0))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &PredictiveReport{
		HighRiskPatterns: highRiskPatterns(highRisk),
		TimePatterns:     timePatterns(recent),
		SeasonalTrend:    seasonalTrend(yearly),
		GeneratedAt:      now,
	}
	report.Recommendations = generateRecommendations(report.HighRiskPatterns, report.TimePatterns)
	return report, nil
}

func highRiskPatterns(records []*types.Assessment) []HighRiskPattern {
	type agg struct {
		count, scoreSum int
		tasks           map[string]struct{}
	}
	type groupKey struct{ location, team string }
	byGroup := map[groupKey]*agg{}
	for _, a := range records {
		k := groupKey{a.Location, a.Team}
		g := byGroup[k]
		if g == nil {
			g = &agg{tasks: map[string]struct{}{}}
			byGroup[k] = g
		}
		g.count++
		g.scoreSum += a.RiskScore
		if a.Task != "" {
			g.tasks[a.Task] = struct{}{}
		}
	}

	out := make([]HighRiskPattern, 0, len(byGroup))
	for k, g := range byGroup {
		if g.count < patternMinCount {
			continue
		}
		tasks := make([]string, 0, len(g.tasks))
		for t := range g.tasks {
			tasks = append(tasks, t)
		}
		sort.Strings(tasks)
		out = append(out, HighRiskPattern{
			Location:     k.location,
			Team:         k.team,
			Count:        g.count,
			AvgRiskScore: float64(g.scoreSum) / float64(g.count),
			Tasks:        tasks,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Team < out[j].Team
	})
	return out
}

func timePatterns(records []*types.Assessment) []TimePattern {
	type agg struct {
		count, scoreSum, high int
	}
	type slotKey struct{ hour, weekday int }
	bySlot := map[slotKey]*agg{}
	for _, a := range records {
		t := a.CreatedAt.UTC()
		k := slotKey{t.Hour(), int(t.Weekday())}
		g := bySlot[k]
		if g == nil {
			g = &agg{}
			bySlot[k] = g
		}
		g.count++
		g.scoreSum += a.RiskScore
		if a.RiskScore >= risk.HighRiskThreshold {
			g.high++
		}
	}

	out := make([]TimePattern, 0, len(bySlot))
	for k, g := range bySlot {
		if g.count < timeMinCount {
			continue
		}
		out = append(out, TimePattern{
			HourOfDay:     k.hour,
			DayOfWeek:     k.weekday,
			Count:         g.count,
			AvgRiskScore:  float64(g.scoreSum) / float64(g.count),
			HighRiskCount: g.high,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRiskScore != out[j].AvgRiskScore {
			return out[i].AvgRiskScore > out[j].AvgRiskScore
		}
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].HourOfDay < out[j].HourOfDay
	})
	return out
}

func seasonalTrend(records []*types.Assessment) []MonthlyPoint {
	type agg struct {
		count, scoreSum, high int
	}
	byMonth := map[string]*agg{}
	for _, a := range records {
		m := a.CreatedAt.UTC().Format("2006-01")
		g := byMonth[m]
		if g == nil {
			g = &agg{}
			byMonth[m] = g
		}
		g.count++
		g.scoreSum += a.RiskScore
		if a.RiskScore >= risk.HighRiskThreshold {
			g.high++
		}
	}

	out := make([]MonthlyPoint, 0, len(byMonth))
	for m, g := range byMonth {
		out = append(out, MonthlyPoint{
			Month:         m,
			Count:         g.count,
			AvgRiskScore:  float64(g.scoreSum) / float64(g.count),
			HighRiskCount: g.high,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

// generateRecommendations is a deterministic heuristic over the pattern
// groups; it emits advisory text only and never mutates state.
func generateRecommendations(patterns []HighRiskPattern, slots []TimePattern) []Recommendation {
	var out []Recommendation
	for _, p := range patterns {
		if p.Count < recommendLocationMinCount {
			continue
		}
		out = append(out, Recommendation{
			Type:        "location_risk",
			Priority:    "high",
			Title:       fmt.Sprintf("High risk identified: %s", p.Location),
			Description: fmt.Sprintf("%s has %d high-risk assessments with an average risk score of %.1f.", p.Location, p.Count, p.AvgRiskScore),
			Action:      "Consider additional safety measures and training for this location.",
		})
	}

	// One aggregate time recommendation, not one per slot.
	for _, s := range slots {
		if s.AvgRiskScore >= recommendTimeAvgScore {
			out = append(out, Recommendation{
				Type:        "time_risk",
				Priority:    "medium",
				Title:       "High-risk time slots identified",
				Description: "Elevated average risk scores observed during specific hours and weekdays.",
				Action:      "Consider reinforced supervision during these times.",
			})
			break
		}
	}
	return out
}

func (s *analyticsService) Export(ctx context.Context, windowDays int, format string) (*ExportResult, error) {
	if err := requireAnalyticsCaller(ctx); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = defaultExportWindowDays
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return nil, apperr.Validation("unsupported export format %q", format)
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)
	records, err := s.assessmentRepo.ListCreatedSince(ctx, nil, since)
	if err != nil {
		return nil, err
	}

	creatorIDs := make([]uuid.UUID, 0, len(records))
	seen := map[uuid.UUID]struct{}{}
	for _, a := range records {
		if _, ok := seen[a.CreatedBy]; !ok {
			seen[a.CreatedBy] = struct{}{}
			creatorIDs = append(creatorIDs, a.CreatedBy)
		}
	}
	creators, err := s.userRepo.GetByIDs(ctx, nil, creatorIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(creators))
	for _, u := range creators {
		names[u.ID] = u.Name
	}

	rows := make([]*ExportRow, 0, len(records))
	for _, a := range records {
		rows = append(rows, exportRow(a, names[a.CreatedBy]))
	}

	result := &ExportResult{Format: format, Rows: rows}
	if format == "csv" {
		csvText, err := rowsToCSV(rows)
		if err != nil {
			return nil, err
		}
		result.CSV = csvText
		result.Rows = nil
	}
	return result, nil
}

func exportRow(a *types.Assessment, creatorName string) *ExportRow {
	answers := make([]string, len(a.Checklist))
	for i, ans := range a.Checklist {
		if ans == types.AnswerUnanswered {
			answers[i] = "-"
		} else {
			answers[i] = string(ans)
		}
	}
	approvedAt := ""
	if a.ApprovedAt != nil {
		approvedAt = a.ApprovedAt.UTC().Format(time.RFC3339)
	}
	return &ExportRow{
		ID:             a.ID,
		WorkDate:       a.WorkDate,
		WorkerName:     a.WorkerName,
		Team:           a.Team,
		Location:       a.Location,
		Task:           a.Task,
		Probability:    a.Probability,
		Consequence:    a.Consequence,
		RiskScore:      a.RiskScore,
		Risks:          a.Risks,
		Checklist:      strings.Join(answers, ";"),
		Actions:        a.Actions,
		Safe:           string(a.Safe),
		Leader:         a.Leader,
		Signature:      a.Signature,
		RequiresLeader: a.RequiresLeader,
		LeaderProvided: a.LeaderProvided,
		Status:         string(a.Status),
		CreatedByName:  creatorName,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339),
		ApprovedAt:     approvedAt,
	}
}

var exportHeader = []string{
	"id", "work_date", "worker_name", "team", "location", "task",
	"probability", "consequence", "risk_score", "risks", "checklist",
	"actions", "safe", "leader", "signature", "requires_leader",
	"leader_provided", "status", "created_by_name", "created_at", "approved_at",
}

// rowsToCSV serializes rows as RFC 4180 text: fields containing the delimiter
// get quoted and embedded quotes are doubled, which is exactly what
// encoding/csv produces.
func rowsToCSV(rows []*ExportRow) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.WorkDate, r.WorkerName, r.Team, r.Location, r.Task,
			strconv.Itoa(r.Probability), strconv.Itoa(r.Consequence), strconv.Itoa(r.RiskScore),
			r.Risks, r.Checklist, r.Actions, r.Safe, r.Leader, r.Signature,
			strconv.FormatBool(r.RequiresLeader), strconv.FormatBool(r.LeaderProvided),
			r.Status, r.CreatedByName, r.CreatedAt, r.ApprovedAt,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
