package services

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"AE-VISA/internal/models"

	"gorm.io/gorm"
)

type SubmissionStatistics struct {
	TotalSubmissions              int64 `json:"total_submissions"`
	PaymentPendingSubmissions     int64 `json:"payment_pending_submissions"`
	UnderProgressSubmissions      int64 `json:"under_progress_submissions"`
	CompletedSubmissions          int64 `json:"completed_submissions"`
	RejectedSubmissions           int64 `json:"rejected_submissions"`
	ReturnModificationSubmissions int64 `json:"return_modification_submissions"`
}

type StatusPercentage struct {
	Status     models.FormStatus `json:"status"`
	Percentage float64           `json:"percentage"`
}

type ServiceStatistic struct {
	ServiceID         string `json:"service_id"`
	Title             string `json:"title"`
	TotalApplications int64  `json:"total_applications"`
}

type DashboardStatistics struct {
	TotalUsers            int64 `json:"total_users"`
	ApplicationsSubmitted int64 `json:"applications_submitted"`
	PendingApplications   int64 `json:"pending_applications"`
	TodayApplications     int64 `json:"today_applications"`
}

type MonthlyUserCount struct {
	CompanyCount    int64 `json:"company_count"`
	IndividualCount int64 `json:"individual_count"`
}

type RegisteredUsersGraph struct {
	Year string             `json:"year"`
	Data []MonthlyUserCount `json:"data"`
}

type UserTypesCount struct {
	CompanyCount    int64 `json:"company_count"`
	IndividualCount int64 `json:"individual_count"`
}

type StatisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{db: db}
}

// SubmissionStatistics counts submissions overall and per status. The total
// always equals the sum of the per-status counts since every submission
// carries exactly one status.
func (s *StatisticsService) SubmissionStatistics() (*SubmissionStatistics, error) {
	var stats SubmissionStatistics
	if err := s.db.Model(&models.FormSubmission{}).Count(&stats.TotalSubmissions).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	counts := map[models.FormStatus]*int64{
		models.StatusPaymentPending:     &stats.PaymentPendingSubmissions,
		models.StatusUnderProgress:      &stats.UnderProgressSubmissions,
		models.StatusCompleted:          &stats.CompletedSubmissions,
		models.StatusRejected:           &stats.RejectedSubmissions,
		models.StatusReturnModification: &stats.ReturnModificationSubmissions,
	}
	for status, dst := range counts {
		err := s.db.Model(&models.FormSubmission{}).
			Where("status = ?", status).
			Count(dst).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count %s submissions: %w", status, err)
		}
	}
	return &stats, nil
}

// StatusGraph reports the percentage distribution of submissions across every
// status, optionally filtered to a year. Every status appears in the result;
// a zero total yields 0 for all of them.
func (s *StatisticsService) StatusGraph(year string) ([]StatusPercentage, error) {
	query := s.db.Model(&models.FormSubmission{})
	if year != "" {
		start, end, err := yearBounds(year)
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at >= ? AND created_at < ?", start, end)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	result := make([]StatusPercentage, 0, len(models.FormStatuses))
	if total == 0 {
		for _, status := range models.FormStatuses {
			result = append(result, StatusPercentage{Status: status})
		}
		return result, nil
	}

	var rows []struct {
		Status models.FormStatus
		Count  int64
	}
	err := query.
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group submissions by status: %w", err)
	}

	countByStatus := make(map[models.FormStatus]int64, len(rows))
	for _, row := range rows {
		countByStatus[row.Status] = row.Count
	}

	for _, status := range models.FormStatuses {
		pct := float64(countByStatus[status]) / float64(total) * 100
		result = append(result, StatusPercentage{
			Status:     status,
			Percentage: math.Round(pct*100) / 100,
		})
	}
	return result, nil
}

// ServiceStatistics counts applications per category, optionally filtered to a
// year. Categories with no submissions still appear with a zero count, so the
// year bound lives in the join condition rather than the where clause.
func (s *StatisticsService) ServiceStatistics(year string) ([]ServiceStatistic, error) {
	join := "LEFT JOIN form_submissions ON form_submissions.category_id = categories.id AND form_submissions.deleted_at IS NULL"
	args := []interface{}{}
	if year != "" {
		start, end, err := yearBounds(year)
		if err != nil {
			return nil, err
		}
		join += " AND form_submissions.created_at >= ? AND form_submissions.created_at < ?"
		args = append(args, start, end)
	}

	var stats []ServiceStatistic
	err := s.db.Table("categories").
		Select("categories.id AS service_id, categories.title AS title, COUNT(form_submissions.id) AS total_applications").
		Joins(join, args...).
		Where("categories.deleted_at IS NULL").
		Group("categories.id, categories.title").
		Order("categories.title ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate service statistics: %w", err)
	}
	return stats, nil
}

// Dashboard aggregates the admin landing numbers.
func (s *StatisticsService) Dashboard() (*DashboardStatistics, error) {
	var stats DashboardStatistics
	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := s.db.Model(&models.FormSubmission{}).Count(&stats.ApplicationsSubmitted).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	err := s.db.Model(&models.FormSubmission{}).
		Where("status = ?", models.StatusUnderProgress).
		Count(&stats.PendingApplications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending submissions: %w", err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	err = s.db.Model(&models.FormSubmission{}).
		Where("created_at >= ? AND created_at < ?", today, tomorrow).
		Count(&stats.TodayApplications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count today's submissions: %w", err)
	}
	return &stats, nil
}

// RegisteredUsers breaks registrations into twelve monthly company/individual
// buckets for a year, defaulting to the current one.
func (s *StatisticsService) RegisteredUsers(year string) (*RegisteredUsersGraph, error) {
	currentYear := time.Now().Year()
	if year != "" {
		parsed, err := strconv.Atoi(year)
		if err != nil {
			return nil, validationf("invalid year %q", year)
		}
		currentYear = parsed
	}

	graph := &RegisteredUsersGraph{
		Year: strconv.Itoa(currentYear),
		Data: make([]MonthlyUserCount, 12),
	}
	for month := 0; month < 12; month++ {
		start := time.Date(currentYear, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)

		bucket := &graph.Data[month]
		err := s.db.Model(&models.User{}).
			Where("is_company = ? AND created_at >= ? AND created_at < ?", true, start, end).
			Count(&bucket.CompanyCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count company users: %w", err)
		}
		err = s.db.Model(&models.User{}).
			Where("is_company = ? AND created_at >= ? AND created_at < ?", false, start, end).
			Count(&bucket.IndividualCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count individual users: %w", err)
		}
	}
	return graph, nil
}

// UserTypes splits the user base into company and individual accounts.
func (s *StatisticsService) UserTypes() (*UserTypesCount, error) {
	var counts UserTypesCount
	err := s.db.Model(&models.User{}).Where("is_company = ?", true).Count(&counts.CompanyCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count company users: %w", err)
	}
	err = s.db.Model(&models.User{}).Where("is_company = ?", false).Count(&counts.IndividualCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count individual users: %w", err)
	}
	return &counts, nil
}

func yearBounds(year string) (time.Time, time.Time, error) {
	parsed, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("invalid year %q", year)
	}
	start := time.Date(parsed, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0), nil
}
