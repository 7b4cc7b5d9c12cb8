package config

import (
	"fmt"
	"sort"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}

	if err := c.Vision.validate(); err != nil {
		return fmt.Errorf("vision: %w", err)
	}

	if err := c.Quota.validate(); err != nil {
		return fmt.Errorf("quota: %w", err)
	}

	return nil
}

func (s *SRSConfig) validate() error {
	ladder, err := parseIntList(s.IntervalLadderRaw)
	if err != nil {
		return fmt.Errorf("interval_ladder: %w", err)
	}
	if len(ladder) == 0 {
		return fmt.Errorf("interval_ladder must not be empty")
	}
	for _, d := range ladder {
		if d <= 0 {
			return fmt.Errorf("interval_ladder values must be > 0 (got %d)", d)
		}
	}
	if !sort.IntsAreSorted(ladder) {
		return fmt.Errorf("interval_ladder must be ascending (got %v)", ladder)
	}
	s.IntervalLadder = ladder

	if s.DuePageSize <= 0 {
		return fmt.Errorf("due_page_size must be > 0 (got %d)", s.DuePageSize)
	}
	if s.QuizSize <= 0 {
		return fmt.Errorf("quiz_size must be > 0 (got %d)", s.QuizSize)
	}
	if s.MinQuizPool < 2 {
		return fmt.Errorf("min_quiz_pool must be >= 2 (got %d)", s.MinQuizPool)
	}

	return nil
}

func (v *VisionConfig) validate() error {
	models := parseStringList(v.ModelsRaw)
	if len(models) == 0 {
		return fmt.Errorf("models must not be empty")
	}
	v.Models = models

	if v.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be > 0 (got %d)", v.MaxAttempts)
	}
	if v.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be > 0 (got %v)", v.BaseDelay)
	}
	if v.MaxDelay < v.BaseDelay {
		return fmt.Errorf("max_delay must be >= base_delay (got %v < %v)", v.MaxDelay, v.BaseDelay)
	}

	return nil
}

func (q *QuotaConfig) validate() error {
	if q.MonthlyFree < 0 || q.MonthlySprout < 0 || q.MonthlyBloom < 0 {
		return fmt.Errorf("monthly limits must be >= 0")
	}
	if q.DailyBloom < 0 || q.DailyReviewFree < 0 {
		return fmt.Errorf("daily limits must be >= 0")
	}
	return nil
}
