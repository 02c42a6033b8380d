// Package validate checks the parameters of a parsed chat operation against
// per-(entityType, intent) JSON schemas before anything touches storage.
//
// Schemas live in the embedded schemas/ directory, one file per entity type.
// Each file holds three schema arms: "create", "update", and "target" (the
// shared arm for delete/complete/toggle/view, which carry at most a name
// reference). Validation reports every violated rule at once so the error
// layer can surface a complete correction list; there is no fail-fast and
// no side effect.
package validate

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemasFS embed.FS

// FieldError names one violated rule.
type FieldError struct {
	// Field is the offending parameter name, or "" when the violation is
	// not attributable to a single field.
	Field string
	// Message is a short human-readable description of the violation.
	Message string
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Result is the outcome of a Validate call.
type Result struct {
	Valid  bool
	Errors []FieldError
}

// schemas maps "<entity>/<arm>" to its compiled schema.
var schemas = map[string]*jsonschema.Schema{}

func init() {
	compiler := jsonschema.NewCompiler()

	entries, err := schemasFS.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("validate: reading embedded schemas: %v", err))
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		entity := strings.TrimSuffix(name, ".json")

		data, err := schemasFS.ReadFile(path.Join("schemas", name))
		if err != nil {
			panic(fmt.Sprintf("validate: reading schema %s: %v", name, err))
		}
		if err := compiler.AddResource(name, strings.NewReader(string(data))); err != nil {
			panic(fmt.Sprintf("validate: adding schema %s: %v", name, err))
		}

		for _, arm := range []string{"create", "update", "target"} {
			sch, err := compiler.Compile(name + "#/" + arm)
			if err != nil {
				panic(fmt.Sprintf("validate: compiling %s#/%s: %v", name, arm, err))
			}
			schemas[entity+"/"+arm] = sch
		}
	}
}

// arm maps an intent onto the schema arm that applies to it.
func arm(intent string) string {
	switch intent {
	case "create":
		return "create"
	case "update":
		return "update"
	default:
		// delete, complete, toggle, view all target an existing entity.
		return "target"
	}
}

// Validate checks params against the schema for the given entity type and
// intent. Entity types without a registered schema validate as true; the
// router rejects unknown entities with its own "not supported" result.
func Validate(entityType, intent string, params map[string]any) Result {
	sch, ok := schemas[entityType+"/"+arm(intent)]
	if !ok {
		return Result{Valid: true}
	}

	// Round-trip through encoding/json so Go-native values (int, custom
	// slices) become the canonical types the schema evaluator expects.
	if params == nil {
		params = map[string]any{}
	}
	normalized, err := normalize(params)
	if err != nil {
		return Result{Errors: []FieldError{{Message: "parameters are not serializable"}}}
	}

	if err := sch.Validate(normalized); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return Result{Errors: []FieldError{{Message: err.Error()}}}
		}
		return Result{Errors: flatten(ve)}
	}

	return Result{Valid: true}
}

// normalize converts params to the plain JSON type universe
// (map[string]any, []any, float64, string, bool, nil).
func normalize(params map[string]any) (any, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// flatten walks the validation error tree and collects one FieldError per
// leaf cause, deduplicated by field+message.
func flatten(ve *jsonschema.ValidationError) []FieldError {
	var out []FieldError
	seen := map[string]bool{}

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}

		for _, fe := range leafErrors(e) {
			key := fe.Field + "\x00" + fe.Message
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, fe)
		}
	}
	walk(ve)

	if len(out) == 0 {
		out = append(out, FieldError{Message: "parameters are invalid"})
	}
	return out
}

// leafErrors converts one leaf validation error into field errors. A
// "required" violation names every missing property individually so the
// user sees the full list of fields to supply.
func leafErrors(e *jsonschema.ValidationError) []FieldError {
	if strings.HasSuffix(e.KeywordLocation, "/required") {
		missing := quotedNames(e.Message)
		if len(missing) > 0 {
			out := make([]FieldError, 0, len(missing))
			for _, m := range missing {
				out = append(out, FieldError{Field: m, Message: "is required"})
			}
			return out
		}
	}

	return []FieldError{{Field: instanceField(e.InstanceLocation), Message: e.Message}}
}

// instanceField turns a JSON pointer like "/rating" into a dotted field name.
func instanceField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}

// quotedNames extracts single-quoted identifiers from a message like
// "missing properties: 'name', 'frequency'".
func quotedNames(msg string) []string {
	var out []string
	for {
		start := strings.IndexByte(msg, '\'')
		if start < 0 {
			return out
		}
		rest := msg[start+1:]
		end := strings.IndexByte(rest, '\'')
		if end < 0 {
			return out
		}
		out = append(out, rest[:end])
		msg = rest[end+1:]
	}
}
