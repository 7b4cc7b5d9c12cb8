package domain

// Defaults applied when a model response omits the envelope fields.
const (
	DefaultSourceApp  = "General"
	DefaultTargetLang = "en"
	DefaultSourceLang = "zh-TW"
)

// ParsedWord is a single vocabulary word extracted by the vision model.
type ParsedWord struct {
	Word            string   `json:"word"`
	Pronunciation   string   `json:"pronunciation"`
	Translation     string   `json:"translation"`
	ContextSentence string   `json:"context_sentence"`
	ContextTrans    string   `json:"context_trans"`
	Tags            []string `json:"tags"`
	AIExample       string   `json:"ai_example"`
}

// ParseResult is the structured outcome of a screenshot analysis.
type ParseResult struct {
	SourceApp  string       `json:"source_app"`
	TargetLang string       `json:"target_lang"`
	SourceLang string       `json:"source_lang"`
	Words      []ParsedWord `json:"words"`
}

// EmptyParseResult is the well-defined fallback when the model output cannot
// be parsed: no words found, default language placeholders.
func EmptyParseResult() ParseResult {
	return ParseResult{
		SourceApp:  DefaultSourceApp,
		TargetLang: DefaultTargetLang,
		SourceLang: DefaultSourceLang,
		Words:      []ParsedWord{},
	}
}

// Normalize fills missing fields with type-appropriate defaults so a
// partially-conforming model response never produces a malformed card.
func (r *ParseResult) Normalize() {
	if r.SourceApp == "" {
		r.SourceApp = DefaultSourceApp
	}
	if r.TargetLang == "" {
		r.TargetLang = DefaultTargetLang
	}
	if r.SourceLang == "" {
		r.SourceLang = DefaultSourceLang
	}
	if r.Words == nil {
		r.Words = []ParsedWord{}
	}
	for i := range r.Words {
		if r.Words[i].Tags == nil {
			r.Words[i].Tags = []string{}
		}
	}
}
