// Package license computes plan tiers and recording allotments. The check is
// advisory: it reads a count immediately before a render is initiated, so two
// concurrent creates by the same account can both pass. That race is accepted
// and not mitigated.
package license

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scrollcast/backend/config"
	"github.com/scrollcast/backend/internal/models"
)

// Plan tier names.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
	PlanAgency  = "agency"
)

const usageCacheTTL = time.Minute

// UsageCounter supplies the recording counts the policy is computed from.
type UsageCounter interface {
	CountByStatus(ctx context.Context, status string) (int, error)
	CountInMonth(ctx context.Context, month string) (int, error)
}

// Status describes the caller's current plan usage for the dashboard.
type Status struct {
	Plan           string `json:"plan"`
	LicenseKey     string `json:"-"`
	UsageLimit     int    `json:"usage_limit"`
	CurrentUsage   int    `json:"current_usage"`
	TotalCompleted int    `json:"total_completed"`
	CanCreate      bool   `json:"can_create"`
	Message        string `json:"message"`
}

// Service evaluates usage limits per plan tier. Free tier counts completed
// recordings over the account lifetime; paid tiers count the current
// calendar month.
type Service struct {
	cfg     config.PlansConfig
	counter UsageCounter
	rdb     *redis.Client // optional: caches monthly usage for status reads
	logger  *zap.Logger
}

// NewService creates a license service. rdb may be nil.
func NewService(cfg config.PlansConfig, counter UsageCounter, rdb *redis.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, counter: counter, rdb: rdb, logger: logger}
}

// Limit returns the allotment for the configured plan.
func (s *Service) Limit() int {
	switch s.cfg.Plan {
	case PlanStarter:
		return s.cfg.StarterLimit
	case PlanPro:
		return s.cfg.ProLimit
	case PlanAgency:
		return s.cfg.AgencyLimit
	}
	return s.cfg.FreeLimit
}

// CanCreate reports whether another recording may be created, with a
// human-readable reason when it may not. Counts are read fresh, not cached.
func (s *Service) CanCreate(ctx context.Context) (bool, string, error) {
	limit := s.Limit()
	usage, err := s.currentUsage(ctx)
	if err != nil {
		return false, "", err
	}
	if usage >= limit {
		if s.cfg.Plan == PlanFree {
			return false, "Free recording used. Upgrade to create more recordings.", nil
		}
		return false, "You have reached your monthly recording limit.", nil
	}
	return true, "", nil
}

// CurrentStatus returns plan, usage and limit for the dashboard. Monthly
// usage is cached briefly in Redis to keep the count endpoint cheap.
func (s *Service) CurrentStatus(ctx context.Context) (*Status, error) {
	total, err := s.counter.CountByStatus(ctx, models.RecordingStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}
	usage, err := s.cachedUsage(ctx)
	if err != nil {
		return nil, err
	}
	limit := s.Limit()
	st := &Status{
		Plan:           s.cfg.Plan,
		LicenseKey:     s.cfg.LicenseKey,
		UsageLimit:     limit,
		CurrentUsage:   usage,
		TotalCompleted: total,
		CanCreate:      usage < limit,
	}
	if st.CanCreate {
		st.Message = "Active plan"
	} else if s.cfg.Plan == PlanFree {
		st.Message = "Free recording used. Upgrade to create more recordings."
	} else {
		st.Message = "You have reached your monthly recording limit."
	}
	return st, nil
}

// currentUsage is the count the limit applies to: lifetime completed for
// free, current calendar month for paid tiers.
func (s *Service) currentUsage(ctx context.Context) (int, error) {
	if s.cfg.Plan == PlanFree {
		n, err := s.counter.CountByStatus(ctx, models.RecordingStatusCompleted)
		if err != nil {
			return 0, fmt.Errorf("count completed: %w", err)
		}
		return n, nil
	}
	month := time.Now().UTC().Format("2006-01")
	n, err := s.counter.CountInMonth(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("count month %s: %w", month, err)
	}
	return n, nil
}

func (s *Service) cachedUsage(ctx context.Context) (int, error) {
	if s.rdb == nil {
		return s.currentUsage(ctx)
	}
	key := "license:usage:" + s.cfg.Plan + ":" + time.Now().UTC().Format("2006-01")
	if v, err := s.rdb.Get(ctx, key).Result(); err == nil {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			return n, nil
		}
	}
	n, err := s.currentUsage(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Set(ctx, key, strconv.Itoa(n), usageCacheTTL).Err(); err != nil {
		s.logger.Debug("usage cache set failed", zap.Error(err))
	}
	return n, nil
}

// InvalidateUsage drops the cached usage count after a create or delete.
func (s *Service) InvalidateUsage(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	key := "license:usage:" + s.cfg.Plan + ":" + time.Now().UTC().Format("2006-01")
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Debug("usage cache invalidate failed", zap.Error(err))
	}
}
