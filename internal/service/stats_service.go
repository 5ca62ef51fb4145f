package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gcsepal-backend/internal/cache"
	"gcsepal-backend/internal/db"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/utilities"
)

const statsCacheKey = "admin:stats"
const statsCacheTTL = time.Minute

// AdminStats is the dashboard payload for admins and teachers.
type AdminStats struct {
	TotalUsers       int64   `json:"total_users"`
	TotalCourses     int64   `json:"total_courses"`
	PublishedCourses int64   `json:"published_courses"`
	TotalEnrollments int64   `json:"total_enrollments"`
	CompletedCourses int64   `json:"completed_courses"`
	QuizAttempts     int64   `json:"quiz_attempts"`
	PassRate         float64 `json:"pass_rate"`
	AverageScore     float64 `json:"average_score"`
	LastActivity     string  `json:"last_activity"`
}

type StatsService interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type statsService struct {
	executor *db.QueryExecutor
	quizRepo repository.QuizRepository
	cache    cache.Store
}

func NewStatsService(executor *db.QueryExecutor, quizRepo repository.QuizRepository, cacheStore cache.Store) StatsService {
	return &statsService{
		executor: executor,
		quizRepo: quizRepo,
		cache:    cacheStore,
	}
}

func (s *statsService) AdminStats(ctx context.Context) (*AdminStats, error) {
	if data, ok := s.cache.Get(ctx, statsCacheKey); ok {
		var cached AdminStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	stats := &AdminStats{}

	counts := []struct {
		dest       *int64
		table      string
		conditions map[string]interface{}
	}{
		{&stats.TotalUsers, "users", nil},
		{&stats.TotalCourses, "courses", nil},
		{&stats.PublishedCourses, "courses", map[string]interface{}{"status": "published"}},
		{&stats.TotalEnrollments, "enrollments", nil},
		{&stats.CompletedCourses, "enrollments", map[string]interface{}{"status": "completed"}},
	}
	for _, c := range counts {
		count, err := s.executor.Count(c.table, c.conditions)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
		*c.dest = count
	}

	quizStats, err := s.quizRepo.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz stats: %w", err)
	}
	stats.QuizAttempts = quizStats.TotalAttempts
	stats.AverageScore = quizStats.AverageScore
	if quizStats.TotalAttempts > 0 {
		stats.PassRate = 100 * float64(quizStats.PassedCount) / float64(quizStats.TotalAttempts)
	}

	lastActivity, err := s.lastActivity()
	if err != nil {
		utilities.Warn("failed to resolve last activity: %v", err)
		lastActivity = "unknown"
	}
	stats.LastActivity = lastActivity

	if data, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, statsCacheKey, data, statsCacheTTL)
	}

	return stats, nil
}

func (s *statsService) lastActivity() (string, error) {
	rows, err := s.executor.Select(`SELECT MAX(started_at) AS last FROM study_sessions`)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0]["last"] == nil {
		return "no activity yet", nil
	}
	last, ok := rows[0]["last"].(time.Time)
	if !ok {
		return "unknown", nil
	}
	return HumanizeSince(last), nil
}

// HumanizeSince renders the elapsed time since t as a short phrase.
func HumanizeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
