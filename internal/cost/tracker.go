package cost

import (
	"context"
	"dailydigest/internal/llm"
	"fmt"
	"log/slog"
)

// Tracker records the cost of each completion into a run's ledger.
type Tracker struct {
	ledger  *Ledger
	fetcher GenerationFetcher
	policy  RetryPolicy
	log     *slog.Logger
}

// NewTracker creates a tracker. A nil fetcher records the completion's own token usage at zero cost.
func NewTracker(ledger *Ledger, fetcher GenerationFetcher, policy RetryPolicy, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		ledger:  ledger,
		fetcher: fetcher,
		policy:  policy,
		log:     log,
	}
}

// Ledger returns the ledger this tracker writes to.
func (t *Tracker) Ledger() *Ledger {
	return t.ledger
}

// Track looks up billing metadata for completion and records it.
// A lookup that exhausts its retries returns an error for the caller to escalate.
func (t *Tracker) Track(ctx context.Context, kind, source string, completion *llm.Completion) error {
	if completion == nil {
		return fmt.Errorf("no completion to track")
	}

	op := Operation{
		Kind:             kind,
		Source:           source,
		GenerationID:     completion.ID,
		Model:            completion.Model,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
	}

	if t.fetcher != nil {
		gen, err := Lookup(ctx, t.fetcher, completion.ID, t.policy)
		if err != nil {
			return fmt.Errorf("cost tracking for %s failed: %w", kind, err)
		}
		op.Cost = gen.TotalCost
		op.Latency = gen.Latency
		if gen.Model != "" {
			op.Model = gen.Model
		}
		if gen.PromptTokens > 0 || gen.CompletionTokens > 0 {
			op.PromptTokens = gen.PromptTokens
			op.CompletionTokens = gen.CompletionTokens
		}
	}

	recorded := t.ledger.Record(op)
	t.log.Debug("Recorded completion cost",
		"kind", kind,
		"source", source,
		"model", recorded.Model,
		"cost_usd", recorded.Cost,
		"prompt_tokens", recorded.PromptTokens,
		"completion_tokens", recorded.CompletionTokens)
	return nil
}
