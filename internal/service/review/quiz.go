package review

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/snappword/snappword-backend/internal/domain"
)

const distractorsPerQuestion = 3

// BuildQuiz assembles a multiple-choice quiz from the user's due cards.
// Distractors are other cards' translations, preferring the same target
// language before falling back to the rest of the collection.
//
// A collection with fewer distinct translations than the configured minimum
// cannot produce meaningful options; the sheet comes back with NeedMoreCards
// set and no questions.
func (s *Service) BuildQuiz(ctx context.Context, userID uuid.UUID) (domain.QuizSheet, error) {
	now := s.now()

	refs, err := s.cards.ListTranslations(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "list translations failed", slog.String("user_id", userID.String()), slog.Any("error", err))
		return domain.QuizSheet{Questions: []domain.QuizQuestion{}, NeedMoreCards: true}, nil
	}

	if countDistinctTranslations(refs) < s.srsCfg.MinQuizPool {
		return domain.QuizSheet{Questions: []domain.QuizQuestion{}, NeedMoreCards: true}, nil
	}

	totalDue, err := s.cards.CountDue(ctx, userID, now)
	if err != nil {
		s.log.ErrorContext(ctx, "count due failed", slog.Any("error", err))
		totalDue = 0
	}

	due, err := s.cards.GetDue(ctx, userID, now, s.srsCfg.DuePageSize)
	if err != nil {
		s.log.ErrorContext(ctx, "get due cards failed", slog.Any("error", err))
		return domain.QuizSheet{Questions: []domain.QuizQuestion{}, TotalDue: totalDue}, nil
	}

	questions := make([]domain.QuizQuestion, 0, s.srsCfg.QuizSize)
	for _, card := range due {
		if len(questions) >= s.srsCfg.QuizSize {
			break
		}
		if card.Translation == "" {
			continue
		}

		questions = append(questions, domain.QuizQuestion{
			CardID:        card.ID,
			Word:          card.Word,
			Pronunciation: card.Pronunciation,
			Language:      card.TargetLang,
			CorrectAnswer: card.Translation,
			Options:       s.buildOptions(card, refs),
		})
	}

	return domain.QuizSheet{Questions: questions, TotalDue: totalDue}, nil
}

// buildOptions picks distractors and shuffles them together with the correct
// answer. Duplicate translations are dropped, so a small collection can yield
// fewer than four options.
func (s *Service) buildOptions(card domain.Card, refs []domain.TranslationRef) []string {
	var sameLang, otherLang []string
	for _, ref := range refs {
		if ref.CardID == card.ID {
			continue
		}
		if ref.TargetLang == card.TargetLang {
			sameLang = append(sameLang, ref.Translation)
		} else {
			otherLang = append(otherLang, ref.Translation)
		}
	}

	s.shuffleStrings(sameLang)
	s.shuffleStrings(otherLang)

	seen := map[string]bool{card.Translation: true}
	options := []string{card.Translation}
	for _, candidate := range append(sameLang, otherLang...) {
		if len(options) > distractorsPerQuestion {
			break
		}
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		options = append(options, candidate)
	}

	s.shuffleStrings(options)
	return options
}

func (s *Service) shuffleStrings(items []string) {
	s.shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func countDistinctTranslations(refs []domain.TranslationRef) int {
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		seen[ref.Translation] = true
	}
	return len(seen)
}
