package vision

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/snappword/snappword-backend/internal/domain"
)

// fencedJSONPattern matches a ```json ... ``` (or bare ```) code fence.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseResponse turns raw model output into a ParseResult. It tries, in order:
// the whole text as JSON, a fenced code block, then the span from the first
// "{" to the last "}". If nothing decodes, the empty result is returned with
// ok=false so the caller can log the parse failure without dropping the user.
func parseResponse(text string) (domain.ParseResult, bool) {
	for _, candidate := range jsonCandidates(text) {
		var result domain.ParseResult
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			result.Normalize()
			return result, true
		}
	}

	return domain.EmptyParseResult(), false
}

func jsonCandidates(text string) []string {
	var candidates []string

	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		candidates = append(candidates, trimmed)
	}

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}

	// Widest {...} span, for output with prose around the JSON.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	return candidates
}
