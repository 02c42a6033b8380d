package recovery

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
)

// actionVerbs are the words that signal the user is asking for an action.
var actionVerbs = map[string]bool{
	"add": true, "create": true, "track": true, "start": true, "new": true,
	"log": true, "record": true, "write": true, "journal": true,
	"update": true, "change": true, "rename": true, "edit": true, "set": true,
	"delete": true, "remove": true, "drop": true, "clear": true,
	"complete": true, "done": true, "finish": true, "finished": true, "mark": true,
	"toggle": true, "pause": true, "resume": true,
	"show": true, "view": true, "list": true, "check": true,
}

// entityNouns are the words that signal which domain the user means.
var entityNouns = map[string]bool{
	"habit": true, "habits": true,
	"goal": true, "goals": true,
	"journal": true, "entry": true, "diary": true,
	"mood": true, "feeling": true, "feelings": true,
	"routine": true, "routines": true,
	"belief": true, "beliefs": true,
	"synchronicity": true, "synchronicities": true, "coincidence": true,
}

// knownTerms is the small dictionary used for typo correction. Keep it to
// domain words the parser actually recognises; correcting arbitrary English
// is not the goal.
var knownTerms = []string{
	"habit", "goal", "journal", "mood", "routine", "belief", "synchronicity",
	"create", "track", "delete", "complete", "update", "show",
}

// typoDistanceMax is the maximum edit distance for a typo correction offer.
const typoDistanceMax = 2

// suggestionsFor derives actionable hints from the shape of the original
// message: too little to work with, a missing action verb, a missing entity
// noun, or a recognisable typo.
func suggestionsFor(message string) []ErrorSuggestion {
	tokens := tokenize(message)

	hasVerb := false
	hasNoun := false
	for _, t := range tokens {
		if actionVerbs[t] {
			hasVerb = true
		}
		if entityNouns[t] {
			hasNoun = true
		}
	}

	var out []ErrorSuggestion

	if len(tokens) < 3 || !hasVerb {
		out = append(out, ErrorSuggestion{
			ID:          "be_more_specific",
			Title:       "Be more specific",
			Description: "Tell me what to do and to what, e.g. \"add a habit called Morning run\" or \"log mood 7\".",
			ActionType:  SuggestModify,
			Confidence:  0.9,
		})
	} else if !hasNoun {
		out = append(out, ErrorSuggestion{
			ID:          "specify_entity",
			Title:       "Say what kind of thing you mean",
			Description: "Mention a habit, goal, journal entry, mood, routine, belief, or synchronicity.",
			ActionType:  SuggestModify,
			Confidence:  0.8,
		})
	}

	out = append(out, typoSuggestions(tokens)...)

	out = append(out, ErrorSuggestion{
		ID:          "examples",
		Title:       "See example phrases",
		Description: "Ask \"what can you do?\" for a list of things I understand.",
		ActionType:  SuggestHelp,
		Confidence:  0.5,
	})

	return out
}

// typoSuggestions offers corrections for tokens within a small edit
// distance of a known domain term.
func typoSuggestions(tokens []string) []ErrorSuggestion {
	var out []ErrorSuggestion
	seen := map[string]bool{}

	for _, t := range tokens {
		if len(t) < 4 || actionVerbs[t] || entityNouns[t] {
			continue
		}
		for _, term := range knownTerms {
			if seen[term] {
				continue
			}
			d := resolve.Distance(t, term)
			if d > 0 && d <= typoDistanceMax {
				seen[term] = true
				out = append(out, ErrorSuggestion{
					ID:          "typo_" + term,
					Title:       fmt.Sprintf("Did you mean %q?", term),
					Description: fmt.Sprintf("%q looks like a typo of %q.", t, term),
					ActionType:  SuggestAlternative,
					Confidence:  0.7,
					Parameters:  map[string]string{"replace": t, "with": term},
				})
				break
			}
		}
	}
	return out
}

// recoveryActionsFor builds the ranked recovery paths for an error type.
func recoveryActionsFor(t ErrorType) []RecoveryAction {
	switch t {
	case TypeNetwork:
		return []RecoveryAction{
			{
				ID: "retry_transient", Label: "Retry automatically",
				Description: "Retry the operation after a short backoff.",
				ActionType:  RecoveryAutomatic, Handler: "retry_operation", Priority: 1,
			},
			{
				ID: "form_fallback", Label: "Use the form instead",
				Description: "Open the regular form for this action.",
				ActionType:  RecoveryFallback, Handler: "open_form", Priority: 3,
			},
		}
	case TypeRateLimit:
		return []RecoveryAction{
			{
				ID: "retry_after_cooldown", Label: "Wait and retry",
				Description: "Retry once the rate limit window has passed.",
				ActionType:  RecoveryAutomatic, Handler: "retry_operation", Priority: 1,
			},
			{
				ID: "form_fallback", Label: "Use the form instead",
				Description: "Open the regular form for this action.",
				ActionType:  RecoveryFallback, Handler: "open_form", Priority: 2,
			},
		}
	case TypeAuthentication:
		return []RecoveryAction{
			{
				ID: "reauthenticate", Label: "Sign in again",
				Description: "Re-authenticate and resubmit the request.",
				ActionType:  RecoveryUserInput, Handler: "reauthenticate", Priority: 1,
			},
		}
	case TypeParsing, TypeValidation:
		return []RecoveryAction{
			{
				ID: "guided_input", Label: "Answer a couple of questions",
				Description: "Walk through a short guided flow to fill in what's missing.",
				ActionType:  RecoveryUserInput, Handler: "guided_input", Priority: 1,
			},
			{
				ID: "form_fallback", Label: "Use the form instead",
				Description: "Open the regular form for this action.",
				ActionType:  RecoveryFallback, Handler: "open_form", Priority: 2,
			},
		}
	default:
		return []RecoveryAction{
			{
				ID: "retry_prompt", Label: "Try again",
				Description: "Rephrase or resend the request.",
				ActionType:  RecoveryUserInput, Handler: "retry_prompt", Priority: 1,
			},
			{
				ID: "form_fallback", Label: "Use the form instead",
				Description: "Open the regular form for this action.",
				ActionType:  RecoveryFallback, Handler: "open_form", Priority: 2,
			},
		}
	}
}

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
