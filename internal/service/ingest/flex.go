package ingest

import (
	"fmt"

	"github.com/snappword/snappword-backend/internal/adapter/line"
	"github.com/snappword/snappword-backend/internal/domain"
)

const brandColor = "#06C755"

// flashcardURL is where the review button in each bubble points.
const flashcardURL = "https://snappword.com/flashcard"

// maxCarouselCards caps the carousel below the LINE bubble limit of 12.
const maxCarouselCards = 10

// vocabCarousel renders saved cards as a flex carousel, one bubble per word.
// A single card is sent as a lone bubble rather than a one-element carousel.
func vocabCarousel(cards []domain.Card) line.Message {
	if len(cards) > maxCarouselCards {
		cards = cards[:maxCarouselCards]
	}

	if len(cards) == 1 {
		return line.NewFlexMessage("📖 單字卡："+cards[0].Word, vocabBubble(cards[0]))
	}

	bubbles := make([]map[string]any, 0, len(cards))
	for _, c := range cards {
		bubbles = append(bubbles, vocabBubble(c))
	}
	return line.NewFlexMessage(
		fmt.Sprintf("📖 %d 個單字卡", len(bubbles)),
		map[string]any{"type": "carousel", "contents": bubbles},
	)
}

// vocabBubble builds one flashcard bubble: branded header with the word and
// pronunciation, body with sentence, translation and tags, review button.
func vocabBubble(card domain.Card) map[string]any {
	header := map[string]any{
		"type":            "box",
		"layout":          "vertical",
		"backgroundColor": brandColor,
		"paddingAll":      "16px",
		"contents": []map[string]any{
			{
				"type":   "text",
				"text":   "📖 " + card.Word,
				"color":  "#FFFFFF",
				"size":   "xl",
				"weight": "bold",
			},
			{
				"type":   "text",
				"text":   orSpace(card.Pronunciation),
				"color":  "#E0FFE0",
				"size":   "sm",
				"margin": "xs",
			},
		},
	}

	var body []map[string]any
	if card.OriginalSentence != "" {
		body = append(body, map[string]any{
			"type":  "text",
			"text":  card.OriginalSentence,
			"size":  "md",
			"wrap":  true,
			"color": "#333333",
		})
	}
	translation := " "
	if card.Translation != "" {
		translation = "🇹🇼 " + card.Translation
	}
	body = append(body, map[string]any{
		"type":   "text",
		"text":   translation,
		"size":   "md",
		"wrap":   true,
		"color":  "#555555",
		"margin": "md",
	})
	if card.ContextTrans != "" {
		body = append(body, map[string]any{
			"type":   "text",
			"text":   card.ContextTrans,
			"size":   "sm",
			"wrap":   true,
			"color":  "#888888",
			"margin": "sm",
		})
	}
	if card.AIExample != "" {
		body = append(body,
			map[string]any{"type": "separator", "margin": "lg"},
			map[string]any{
				"type":   "text",
				"text":   "💡 AI 補充例句",
				"size":   "xs",
				"color":  "#AAAAAA",
				"margin": "lg",
			},
			map[string]any{
				"type":   "text",
				"text":   card.AIExample,
				"size":   "sm",
				"wrap":   true,
				"color":  "#666666",
				"margin": "sm",
			},
		)
	}
	if tags := tagRow(card); tags != nil {
		body = append(body, tags)
	}

	footer := map[string]any{
		"type":       "box",
		"layout":     "horizontal",
		"paddingAll": "12px",
		"contents": []map[string]any{
			{
				"type": "button",
				"action": map[string]any{
					"type":  "uri",
					"label": "📚 開始複習",
					"uri":   flashcardURL,
				},
				"style":  "primary",
				"color":  brandColor,
				"height": "sm",
			},
		},
	}

	return map[string]any{
		"type":   "bubble",
		"size":   "kilo",
		"header": header,
		"body": map[string]any{
			"type":       "box",
			"layout":     "vertical",
			"paddingAll": "16px",
			"spacing":    "sm",
			"contents":   body,
		},
		"footer": footer,
	}
}

// tagRow renders the source app plus up to two word tags as small chips.
func tagRow(card domain.Card) map[string]any {
	labels := append([]string{card.SourceApp}, card.Tags...)
	if len(labels) > 3 {
		labels = labels[:3]
	}

	var chips []map[string]any
	for _, label := range labels {
		if label == "" {
			continue
		}
		chips = append(chips, map[string]any{
			"type":            "box",
			"layout":          "horizontal",
			"backgroundColor": "#F0F0F0",
			"cornerRadius":    "8px",
			"paddingAll":      "4px",
			"paddingStart":    "8px",
			"paddingEnd":      "8px",
			"contents": []map[string]any{
				{
					"type":  "text",
					"text":  "🏷 " + label,
					"size":  "xxs",
					"color": "#888888",
				},
			},
		})
	}
	if chips == nil {
		return nil
	}
	return map[string]any{
		"type":     "box",
		"layout":   "horizontal",
		"spacing":  "sm",
		"margin":   "lg",
		"contents": chips,
	}
}

// orSpace keeps flex text nodes valid; LINE rejects empty text values.
func orSpace(s string) string {
	if s == "" {
		return " "
	}
	return s
}
