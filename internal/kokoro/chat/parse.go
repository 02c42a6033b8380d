// Package chat turns free-text messages into entity operations and manages
// the conversational state around them: pending confirmations,
// disambiguation replies, and per-user rate limiting.
package chat

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/kokoro-app/kokoro/internal/kokoro/engine"
)

// ErrNotAnOperation is returned when a message does not look like an
// entity operation at all.
var ErrNotAnOperation = errors.New("chat: message is not an entity operation")

// verbKeywords maps trigger words onto intents. Destructive and completing
// verbs are checked before creating ones so "remove my habit" never parses
// as a create.
var verbKeywords = []struct {
	intent engine.Intent
	words  []string
}{
	{engine.IntentDelete, []string{"delete", "remove", "drop", "forget"}},
	{engine.IntentComplete, []string{"complete", "completed", "done", "finish", "finished", "did", "achieved"}},
	{engine.IntentToggle, []string{"pause", "resume", "toggle", "deactivate", "reactivate"}},
	{engine.IntentUpdate, []string{"update", "change", "rename", "edit", "modify"}},
	{engine.IntentView, []string{"show", "list", "view", "display"}},
	{engine.IntentCreate, []string{"add", "create", "new", "start", "track", "log", "record", "set"}},
}

// entityKeywords maps nouns onto entity types.
var entityKeywords = map[string]engine.EntityType{
	"habit": engine.EntityHabit, "habits": engine.EntityHabit,
	"goal": engine.EntityGoal, "goals": engine.EntityGoal,
	"journal": engine.EntityJournal, "diary": engine.EntityJournal,
	"mood": engine.EntityMood, "feeling": engine.EntityMood, "feelings": engine.EntityMood,
	"routine": engine.EntityRoutine, "routines": engine.EntityRoutine,
	"belief": engine.EntityBelief, "beliefs": engine.EntityBelief,
	"synchronicity": engine.EntitySynchronicity, "synchronicities": engine.EntitySynchronicity,
	"coincidence": engine.EntitySynchronicity,
}

var (
	quotedRE   = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	ratingRE   = regexp.MustCompile(`\b(10|[1-9])\s*(?:/\s*10|out of 10)?\b`)
	progressRE = regexp.MustCompile(`(\d{1,3})\s*%`)
)

// Parse extracts a structured operation from a chat message. It is
// deliberately deterministic: keyword verbs, entity nouns, and a handful of
// extraction rules, so the same message always parses the same way.
func Parse(message string) (engine.ParsedEntityOperation, error) {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)
	if trimmed == "" {
		return engine.ParsedEntityOperation{}, ErrNotAnOperation
	}

	intent, ok := detectIntent(lower)
	if !ok {
		return engine.ParsedEntityOperation{}, ErrNotAnOperation
	}

	entity, hasEntity := detectEntity(lower)
	if !hasEntity {
		switch intent {
		case engine.IntentComplete, engine.IntentToggle:
			// "complete reading" and "pause meditation" default to habits,
			// the entity these verbs overwhelmingly refer to.
			entity = engine.EntityHabit
		default:
			return engine.ParsedEntityOperation{}, ErrNotAnOperation
		}
	}

	op := engine.ParsedEntityOperation{
		EntityType:      entity,
		Intent:          intent,
		Parameters:      engine.Params{},
		OriginalMessage: trimmed,
	}
	extractParameters(&op, trimmed, lower)
	return op, nil
}

// detectIntent finds the first verb keyword in precedence order.
func detectIntent(lower string) (engine.Intent, bool) {
	words := tokenize(lower)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	for _, vk := range verbKeywords {
		for _, w := range vk.words {
			if set[w] {
				return vk.intent, true
			}
		}
	}
	// "how do I feel", "what's my mood" read as views without a verb
	// keyword.
	if set["how"] || set["what"] {
		return engine.IntentView, true
	}
	return "", false
}

// detectEntity finds the first entity noun in the message.
func detectEntity(lower string) (engine.EntityType, bool) {
	for _, w := range tokenize(lower) {
		if e, ok := entityKeywords[w]; ok {
			return e, true
		}
	}
	return "", false
}

// extractParameters fills op.Parameters from the message text.
func extractParameters(op *engine.ParsedEntityOperation, original, lower string) {
	p := op.Parameters

	switch op.EntityType {
	case engine.EntityMood:
		if op.Intent == engine.IntentCreate {
			if m := ratingRE.FindStringSubmatch(lower); m != nil {
				if rating, err := strconv.Atoi(m[1]); err == nil {
					p["rating"] = rating
				}
			}
			if note := strings.TrimSpace(original); note != "" {
				p["note"] = note
			}
		}
		return

	case engine.EntityJournal:
		if op.Intent == engine.IntentCreate {
			p["content"] = journalContent(original, lower)
		} else if name := nameHint(original, lower); name != "" {
			p["title"] = name
		}
		return

	case engine.EntityBelief:
		if op.Intent == engine.IntentCreate {
			if belief := beliefText(original, lower); belief != "" {
				p["belief"] = belief
			}
		} else if name := nameHint(original, lower); name != "" {
			p["belief"] = name
		}
		if reframe := afterPhrase(original, lower, "reframe it as ", "reframe as "); reframe != "" {
			p["reframe"] = reframe
			if op.Intent == engine.IntentCreate {
				op.Intent = engine.IntentUpdate
			}
		}
		return

	case engine.EntitySynchronicity:
		if op.Intent == engine.IntentCreate {
			if desc := afterEntityNoun(original, lower); desc != "" {
				p["description"] = desc
			}
		} else if name := nameHint(original, lower); name != "" {
			p["description"] = name
		}
		return
	}

	if op.EntityType == engine.EntityRoutine && op.Intent == engine.IntentCreate {
		for _, tod := range []string{"morning", "afternoon", "evening"} {
			if strings.Contains(lower, tod) {
				p["time_of_day"] = tod
				break
			}
		}
	}

	// Habits, goals, routines: a name (or title) hint.
	name := nameHint(original, lower)
	if name == "" {
		// "complete reading" carries no entity noun; the target is whatever
		// follows the verb.
		if op.Intent == engine.IntentComplete || op.Intent == engine.IntentToggle {
			name = afterVerb(original, lower, op.Intent)
		}
		if name == "" {
			return
		}
	}

	key := "name"
	if op.EntityType == engine.EntityGoal {
		key = "title"
	}
	if op.Intent == engine.IntentUpdate {
		if to := afterPhrase(original, lower, " to "); to != "" {
			switch {
			case strings.Contains(lower, "rename"):
				// "rename habit Reading to Morning reading"
				newKey := "new_name"
				if key == "title" {
					newKey = "new_title"
				}
				p[newKey] = to
			case progressRE.MatchString(to):
				// "update my goal marathon to 60%"
				if m := progressRE.FindStringSubmatch(to); m != nil {
					if progress, err := strconv.Atoi(m[1]); err == nil {
						p["progress"] = progress
					}
				}
			default:
				// The " to " belongs to the name itself.
				p[key] = name
				return
			}
			if i := strings.Index(strings.ToLower(name), " to "); i >= 0 {
				name = trimTail(name[:i])
			}
		}
	}
	p[key] = name
}

// nameHint extracts the entity name the message refers to: a quoted span,
// the text after "called"/"named", or the text after the entity noun.
func nameHint(original, lower string) string {
	if m := quotedRE.FindStringSubmatch(original); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if name := afterPhrase(original, lower, " called ", " named "); name != "" {
		return name
	}
	return afterEntityNoun(original, lower)
}

// afterPhrase returns the original-cased text following the first of the
// given phrases, trimmed of trailing punctuation.
func afterPhrase(original, lower string, phrases ...string) string {
	for _, phrase := range phrases {
		i := strings.Index(lower, phrase)
		if i < 0 {
			continue
		}
		return trimTail(original[i+len(phrase):])
	}
	return ""
}

// afterEntityNoun returns the text after the first entity noun, skipping
// filler words, so "delete my habit daily exercise" yields "daily exercise".
func afterEntityNoun(original, lower string) string {
	words := strings.Fields(lower)
	offset := 0
	for _, w := range words {
		idx := strings.Index(lower[offset:], w)
		pos := offset + idx
		offset = pos + len(w)
		if _, ok := entityKeywords[strings.Trim(w, ".,!?:;")]; !ok {
			continue
		}
		rest := trimTail(original[offset:])
		return trimTail(stripFiller(rest, "that ", "about ", "for ", "to ", "entry ", "the ", "my ", "a ", "an ", ": "))
	}
	return ""
}

// afterVerb returns the text following the intent's verb keyword, minus
// leading filler, so "complete reading" yields "reading".
func afterVerb(original, lower string, intent engine.Intent) string {
	var words []string
	for _, vk := range verbKeywords {
		if vk.intent == intent {
			words = vk.words
			break
		}
	}
	for _, w := range words {
		if rest := afterPhrase(original, lower, w+" "); rest != "" {
			return trimTail(stripFiller(rest, "with ", "my ", "the ", "a ", "an "))
		}
	}
	return ""
}

// stripFiller repeatedly removes leading filler words.
func stripFiller(s string, fillers ...string) string {
	for changed := true; changed; {
		changed = false
		for _, filler := range fillers {
			if strings.HasPrefix(strings.ToLower(s), filler) {
				s = s[len(filler):]
				changed = true
			}
		}
	}
	return s
}

// journalContent extracts what the user wants written down. "journal about
// X" and "journal: X" keep X; otherwise the whole message is the entry.
func journalContent(original, lower string) string {
	if content := afterPhrase(original, lower, "journal about ", "journal that ", "journal entry about ", "journal entry: ", "journal entry ", "journal: "); content != "" {
		return content
	}
	if content := afterEntityNoun(original, lower); content != "" {
		return content
	}
	return strings.TrimSpace(original)
}

// beliefText extracts the belief statement itself.
func beliefText(original, lower string) string {
	if b := afterPhrase(original, lower, "belief that ", "believe that ", "believe ", "belief "); b != "" {
		return b
	}
	return nameHint(original, lower)
}

// trimTail strips whitespace and trailing sentence punctuation.
func trimTail(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,!?;:")
}

// tokenize splits a lowercased message into bare words.
func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
}
