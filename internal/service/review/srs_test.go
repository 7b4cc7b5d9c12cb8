package review

import (
	"testing"
	"time"

	"github.com/snappword/snappword-backend/internal/domain"
)

var testLadder = []int{1, 3, 7, 14, 30}

func cardAtInterval(status domain.ReviewStatus, intervalDays int, now time.Time) domain.Card {
	next := now.AddDate(0, 0, intervalDays)
	return domain.Card{
		Status:       status,
		UpdatedAt:    now,
		NextReviewAt: &next,
	}
}

func TestPolicy_Advance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	policy := NewPolicy(testLadder)

	tests := []struct {
		name       string
		card       domain.Card
		wantStatus domain.ReviewStatus
		wantDays   int
	}{
		{
			name:       "new card starts the ladder",
			card:       domain.Card{Status: domain.ReviewStatusNew},
			wantStatus: domain.ReviewStatusLearning,
			wantDays:   1,
		},
		{
			name:       "first rung to second",
			card:       cardAtInterval(domain.ReviewStatusLearning, 1, now),
			wantStatus: domain.ReviewStatusLearning,
			wantDays:   3,
		},
		{
			name:       "middle of the ladder",
			card:       cardAtInterval(domain.ReviewStatusLearning, 7, now),
			wantStatus: domain.ReviewStatusLearning,
			wantDays:   14,
		},
		{
			name:       "interval between rungs rounds to the rung above",
			card:       cardAtInterval(domain.ReviewStatusLearning, 5, now),
			wantStatus: domain.ReviewStatusLearning,
			wantDays:   14,
		},
		{
			name:       "second-to-last rung masters the card",
			card:       cardAtInterval(domain.ReviewStatusLearning, 14, now),
			wantStatus: domain.ReviewStatusMastered,
			wantDays:   30,
		},
		{
			name:       "mastered card stays on the last rung",
			card:       cardAtInterval(domain.ReviewStatusMastered, 30, now),
			wantStatus: domain.ReviewStatusMastered,
			wantDays:   30,
		},
		{
			name:       "interval beyond the ladder clamps to the last rung",
			card:       cardAtInterval(domain.ReviewStatusMastered, 90, now),
			wantStatus: domain.ReviewStatusMastered,
			wantDays:   30,
		},
		{
			name:       "learning card without next_review_at restarts from the first rung",
			card:       domain.Card{Status: domain.ReviewStatusLearning, UpdatedAt: now},
			wantStatus: domain.ReviewStatusLearning,
			wantDays:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Advance(tt.card, now)
			if got.Status != tt.wantStatus {
				t.Errorf("Status: got %s, want %s", got.Status, tt.wantStatus)
			}
			want := now.AddDate(0, 0, tt.wantDays)
			if !got.NextReviewAt.Equal(want) {
				t.Errorf("NextReviewAt: got %v, want %v (+%dd)", got.NextReviewAt, want, tt.wantDays)
			}
		})
	}
}

func TestPolicy_Reset(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	policy := NewPolicy(testLadder)

	got := policy.Reset(now)
	if got.Status != domain.ReviewStatusLearning {
		t.Errorf("Status: got %s, want LEARNING", got.Status)
	}
	if want := now.AddDate(0, 0, 1); !got.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt: got %v, want %v", got.NextReviewAt, want)
	}
}

func TestCurrentIntervalDays_NegativeFloorsAtZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	card := domain.Card{Status: domain.ReviewStatusLearning, UpdatedAt: now, NextReviewAt: &past}

	if got := currentIntervalDays(card); got != 0 {
		t.Errorf("currentIntervalDays: got %d, want 0", got)
	}
}
