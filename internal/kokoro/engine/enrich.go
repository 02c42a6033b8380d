package engine

import "strings"

// Parameter enrichment fills in fields the user didn't state explicitly:
// journal titles, moods, and tags are derived from the content, habit and
// goal categories from their names. Explicit parameters always win.

// categoryKeywords maps trigger words onto the category they imply.
var categoryKeywords = map[string]string{
	"run": "health", "running": "health", "walk": "health", "gym": "health",
	"exercise": "health", "workout": "health", "yoga": "health",
	"sleep": "health", "water": "health", "diet": "health",

	"read": "learning", "reading": "learning", "study": "learning",
	"learn": "learning", "course": "learning", "book": "learning",

	"meditate": "mindfulness", "meditation": "mindfulness",
	"journal": "mindfulness", "gratitude": "mindfulness",
	"breathe": "mindfulness", "mindful": "mindfulness",

	"save": "finance", "budget": "finance", "money": "finance",
	"invest": "finance", "spending": "finance",

	"work": "career", "career": "career", "project": "career",
	"interview": "career", "resume": "career",

	"friend": "relationships", "family": "relationships",
	"call": "relationships", "partner": "relationships",
}

// inferCategory guesses a category from free text, returning "" when no
// keyword matches.
func inferCategory(text string) string {
	for _, tok := range tokenizeWords(text) {
		if cat, ok := categoryKeywords[tok]; ok {
			return cat
		}
	}
	return ""
}

// moodKeywords maps feeling words onto a mood label.
var moodKeywords = map[string]string{
	"grateful": "grateful", "thankful": "grateful",
	"happy": "happy", "joyful": "happy", "great": "happy", "excited": "excited",
	"calm": "calm", "peaceful": "calm", "relaxed": "calm",
	"sad": "sad", "down": "sad", "lonely": "sad",
	"anxious": "anxious", "worried": "anxious", "nervous": "anxious",
	"stressed": "stressed", "overwhelmed": "stressed",
	"angry": "angry", "frustrated": "angry",
	"tired": "tired", "exhausted": "tired", "drained": "tired",
}

// inferMood guesses a mood label from free text, returning "" when no
// feeling word appears.
func inferMood(text string) string {
	for _, tok := range tokenizeWords(text) {
		if mood, ok := moodKeywords[tok]; ok {
			return mood
		}
	}
	return ""
}

// positiveWords and negativeWords feed the sentiment fallback used when no
// explicit feeling word appears.
var positiveWords = map[string]bool{
	"good": true, "great": true, "amazing": true, "wonderful": true,
	"love": true, "loved": true, "fun": true, "proud": true, "enjoyed": true,
	"beautiful": true, "best": true,
}

var negativeWords = map[string]bool{
	"bad": true, "awful": true, "terrible": true, "hate": true, "hated": true,
	"hard": true, "rough": true, "worst": true, "hurt": true, "failed": true,
}

// sentimentScore counts positive minus negative word hits.
func sentimentScore(text string) int {
	score := 0
	for _, tok := range tokenizeWords(text) {
		if positiveWords[tok] {
			score++
		}
		if negativeWords[tok] {
			score--
		}
	}
	return score
}

// moodFromSentiment maps a sentiment score onto a coarse mood label.
func moodFromSentiment(text string) string {
	switch score := sentimentScore(text); {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return ""
	}
}

// inferTags collects category and mood keywords present in the text as
// tags, capped at five, deduplicated in order of appearance.
func inferTags(text string) []string {
	var tags []string
	seen := map[string]bool{}
	for _, tok := range tokenizeWords(text) {
		tag := ""
		if cat, ok := categoryKeywords[tok]; ok {
			tag = cat
		} else if mood, ok := moodKeywords[tok]; ok {
			tag = mood
		}
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}

// deriveTitle takes the first sentence of the content, capped at 60 runes.
func deriveTitle(content string) string {
	content = strings.TrimSpace(content)
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if i := strings.Index(content, sep); i >= 0 {
			content = content[:i+1]
			break
		}
	}
	content = strings.TrimRight(content, ".!? \t")
	runes := []rune(content)
	if len(runes) > 60 {
		content = string(runes[:57]) + "..."
	}
	return content
}

// tokenizeWords splits text into lowercase words, stripping punctuation.
func tokenizeWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}
