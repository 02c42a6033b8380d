// Package engine executes parsed chat operations against the domain
// services. The pipeline per operation is: schema validation, target
// resolution, the confirmation gate, then the entity handler, with every
// outcome written to the audit trail.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/kokoro-app/kokoro/common/retry"
	"github.com/kokoro-app/kokoro/common/trace"
	"github.com/kokoro-app/kokoro/internal/kokoro/confirm"
	"github.com/kokoro-app/kokoro/internal/kokoro/insights"
	"github.com/kokoro-app/kokoro/internal/kokoro/recovery"
	"github.com/kokoro-app/kokoro/internal/kokoro/resolve"
	"github.com/kokoro-app/kokoro/internal/kokoro/store"
	"github.com/kokoro-app/kokoro/internal/kokoro/validate"
)

// DefaultServiceTimeout bounds a single domain-service call.
const DefaultServiceTimeout = 10 * time.Second

// Engine routes operations to their entity handlers.
type Engine struct {
	svc        Services
	classifier *recovery.Classifier
	discoverer insights.Discoverer
	timeout    time.Duration
	retry      retry.Config
}

// Options tunes engine behaviour; zero values pick defaults.
type Options struct {
	ServiceTimeout time.Duration
	Retry          retry.Config
	Discoverer     insights.Discoverer
}

// New creates an engine over the given services.
func New(svc Services, opts Options) *Engine {
	if opts.ServiceTimeout <= 0 {
		opts.ServiceTimeout = DefaultServiceTimeout
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig
	}
	if opts.Discoverer == nil {
		opts.Discoverer = insights.Noop{}
	}
	return &Engine{
		svc:        svc,
		classifier: recovery.NewClassifier(),
		discoverer: opts.Discoverer,
		timeout:    opts.ServiceTimeout,
		retry:      opts.Retry,
	}
}

// Classifier exposes the error classifier so the conversation layer can
// classify parse failures against the same per-user history.
func (e *Engine) Classifier() *recovery.Classifier {
	return e.classifier
}

// Execute runs one operation through the full pipeline and always returns
// a renderable result. The operation's lifecycle state is advanced through
// the gate's transition table as it moves through the stages.
func (e *Engine) Execute(ctx context.Context, op ParsedEntityOperation) *OperationResult {
	ctx, traceID := trace.Ensure(ctx)
	state := confirm.StateParsed

	if op.Parameters == nil {
		op.Parameters = Params{}
	}

	if v := validate.Validate(string(op.EntityType), string(op.Intent), op.Parameters); !v.Valid {
		state = advance(state, confirm.StateRejected)
		cerr := e.classifier.ClassifyValidation(op.UserID, op.OriginalMessage,
			string(op.EntityType), string(op.Intent), v.Errors)
		res := failureResult(cerr)
		e.audit(ctx, traceID, op, res, state)
		return res
	}
	state = advance(state, confirm.StateValidated)

	res, err := e.route(ctx, op)
	if err != nil {
		cerr := e.classifier.ClassifyService(op.UserID, op.OriginalMessage,
			string(op.EntityType), string(op.Intent), err)
		res = failureResult(cerr)
	}

	switch {
	case res.Success:
		state = advance(state, confirm.StateReady)
		state = advance(state, confirm.StateExecuting)
		state = advance(state, confirm.StateSucceeded)
	case res.held():
		state = advance(state, res.state)
	case res.Error != nil:
		state = advance(state, confirm.StateReady)
		state = advance(state, confirm.StateExecuting)
		state = advance(state, confirm.StateFailed)
	}
	// Resolution failures (not found, unsupported intent) end the turn
	// before Ready; the state stays Validated and the outcome is an error.

	e.audit(ctx, traceID, op, res, state)

	if res.Success && op.Intent == IntentCreate {
		insights.Trigger(e.discoverer, op.UserID, string(op.EntityType))
	}

	return res
}

// advance moves the operation lifecycle one step, checking the move
// against the gate's transition table.
func advance(from, to confirm.State) confirm.State {
	if !confirm.ValidTransition(from, to) {
		slog.Warn("operation lifecycle step outside the transition table",
			"from", string(from), "to", string(to))
	}
	return to
}

// call invokes one domain-service operation with a per-attempt timeout,
// retrying transient failures.
func (e *Engine) call(ctx context.Context, fn func(ctx context.Context) error) error {
	cfg := e.retry
	cfg.ShouldRetry = recovery.Transient
	return retry.Do(ctx, cfg, func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return fn(callCtx)
	})
}

// audit records the operation outcome. Audit failures are logged, never
// surfaced: the user already has their reply. Holds at the gate audit as
// "held"; a not-found result carrying did-you-mean suggestions is an error.
func (e *Engine) audit(ctx context.Context, traceID string, op ParsedEntityOperation, res *OperationResult, state confirm.State) {
	if e.svc.Audit == nil {
		return
	}

	outcome := "error"
	switch {
	case res.Success:
		outcome = "success"
	case state == confirm.StateNeedsConfirmation || state == confirm.StateNeedsDisambiguation:
		outcome = "held"
	}

	var errMsg string
	if res.Error != nil {
		errMsg = res.Error.Message
	}

	target := op.EntityID
	if target == "" {
		target = op.Parameters.String("name")
	}

	payload := store.AuditPayload{}
	for k, v := range op.Parameters {
		payload[k] = v
	}

	if err := e.svc.Audit.WriteAudit(ctx, traceID, op.UserID, op.Key(), target, outcome, payload, errMsg); err != nil {
		slog.Error("failed to write audit entry", "trace_id", traceID, "action", op.Key(), "err", err)
	}
}

// resolveTarget maps the operation's name hint (or explicit ID) onto one of
// the user's entities. A non-nil *OperationResult means the pipeline stops
// here: not found, ambiguous, or held for a did-you-mean confirmation.
func (e *Engine) resolveTarget(op ParsedEntityOperation, candidates []resolve.Candidate) (resolve.Candidate, *OperationResult) {
	if op.EntityID != "" {
		for _, c := range candidates {
			if c.ID == op.EntityID {
				return c, nil
			}
		}
		return resolve.Candidate{}, notFoundResult(op.EntityType, op.EntityID, nil)
	}

	// Entity types name their targets differently: habits and routines by
	// name, goals by title, beliefs and synchronicities by their text.
	var query string
	for _, key := range []string{"name", "title", "belief", "description"} {
		if query = op.Parameters.String(key); query != "" {
			break
		}
	}

	if len(candidates) == 0 {
		return resolve.Candidate{}, &OperationResult{
			Success: false,
			Message: "You don't have any " + string(op.EntityType) + " entries yet.",
		}
	}

	if query == "" {
		// No hint at all. A single entity is unambiguous; otherwise the
		// user has to pick.
		if len(candidates) == 1 {
			return candidates[0], nil
		}
		return resolve.Candidate{}, gatedResult(confirm.Assess(confirm.Request{
			Action:  string(op.Intent),
			Matches: toOptions(candidates),
		}))
	}

	r := resolve.Resolve(query, candidates)

	switch {
	case r.Found():
		return *r.Match, nil

	case r.Ambiguous:
		return resolve.Candidate{}, gatedResult(confirm.Assess(confirm.Request{
			Action:  string(op.Intent),
			Matches: toOptions(r.Alternatives),
		}))

	case len(r.Alternatives) == 1:
		// One fuzzy suggestion: run it through the gate as uncertain so the
		// user confirms the guess before anything happens.
		cand := r.Alternatives[0]
		d := confirm.Assess(confirm.Request{
			Action:      string(op.Intent),
			EntityName:  cand.Name,
			Destructive: op.Intent == IntentDelete,
			Uncertain:   true,
			Confirmed:   op.Confirmed,
		})
		if d.State != confirm.StateReady {
			res := gatedResult(d)
			res.Alternatives = toOptions(r.Alternatives)
			return resolve.Candidate{}, res
		}
		return cand, nil

	default:
		return resolve.Candidate{}, notFoundResult(op.EntityType, query, toOptions(r.Alternatives))
	}
}

// gate runs a resolved, unambiguous operation through the confirmation
// gate. A non-nil result means the operation is held.
func (e *Engine) gate(op ParsedEntityOperation, entityName string) *OperationResult {
	d := confirm.Assess(confirm.Request{
		Action:      string(op.Intent),
		EntityName:  entityName,
		Destructive: op.Intent == IntentDelete,
		Confirmed:   op.Confirmed,
	})
	if d.State != confirm.StateReady {
		return gatedResult(d)
	}
	return nil
}

func toOptions(candidates []resolve.Candidate) []confirm.Option {
	opts := make([]confirm.Option, 0, len(candidates))
	for _, c := range candidates {
		opts = append(opts, confirm.Option{ID: c.ID, Name: c.Name})
	}
	return opts
}
