package diary

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Emotion labels the analyzer may produce.
const (
	EmotionPositive = "positive"
	EmotionNegative = "negative"
	EmotionNeutral  = "neutral"
)

const (
	summaryMaxSentences = 2
	summaryMaxRunes     = 400
	analyzeMaxKeywords  = 5
)

// RuleBasedProvider is the zero-dependency AIProvider: lexicon sentiment
// scoring and frequency-based keywords. It backs the AI endpoints whenever no
// model-backed provider is configured.
type RuleBasedProvider struct{}

func NewRuleBasedProvider() *RuleBasedProvider {
	return &RuleBasedProvider{}
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "awesome": {}, "love": {}, "happy": {},
	"joy": {}, "wonderful": {}, "excellent": {}, "lucky": {}, "fun": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "hate": {}, "sad": {}, "angry": {},
	"awful": {}, "anxious": {}, "gloomy": {}, "annoyed": {}, "disappointed": {},
}

var (
	sentenceSplitRE = regexp.MustCompile(`(?:[.!?])\s+`)
	wordRE          = regexp.MustCompile(`[\p{L}\p{N}#@]+`)
)

// Summarize keeps the leading sentences of "title. content", capped at two
// sentences and 400 runes.
func (p *RuleBasedProvider) Summarize(ctx context.Context, title, content string) (string, error) {
	text := strings.TrimSpace(content)
	if t := strings.TrimSpace(title); t != "" {
		text = strings.TrimSpace(t + ". " + text)
	}
	sentences := sentenceSplitRE.Split(text, -1)

	n := summaryMaxSentences
	if len(sentences) < n {
		n = len(sentences)
	}

	summary := strings.Join(sentences[:n], " ")
	if runes := []rune(summary); len(runes) > summaryMaxRunes {
		summary = string(runes[:summaryMaxRunes])
	}
	return summary, nil
}

// Analyze scores the text against the sentiment lexicons and returns the most
// frequent words as keywords (up to three, longest-running first).
func (p *RuleBasedProvider) Analyze(ctx context.Context, text string) (string, []string, error) {
	counts := map[string]int{}
	order := []string{}

	for _, word := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(word)) < 2 {
			continue
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
	}

	score := 0
	for word := range counts {
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}

	emotion := EmotionNeutral
	switch {
	case score > 0:
		emotion = EmotionPositive
	case score < 0:
		emotion = EmotionNegative
	}

	// Stable sort keeps first-appearance order among equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	max := 3
	if len(order) < max {
		max = len(order)
	}
	keywords := append([]string(nil), order[:max]...)

	return emotion, keywords, nil
}

// CleanKeywords dedupes and drops out-of-range keywords (2 to 20 runes),
// keeping at most five. Shared by every analyzer implementation.
func CleanKeywords(raw []string) []string {
	out := make([]string, 0, analyzeMaxKeywords)
	seen := map[string]struct{}{}

	for _, k := range raw {
		s := strings.TrimSpace(k)
		n := len([]rune(s))
		if n < 2 || n > 20 {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == analyzeMaxKeywords {
			break
		}
	}
	return out
}

var _ AIProvider = (*RuleBasedProvider)(nil)
