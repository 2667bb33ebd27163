package cost

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation kinds recorded in the ledger.
const (
	KindExtraction    = "extraction"
	KindSummarization = "summarization"
)

// Operation is one completion call as billed by the provider.
type Operation struct {
	ID               string
	Kind             string
	Source           string // Source name for extractions; empty for summarization
	GenerationID     string
	Model            string
	Cost             float64 // USD
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
	Time             time.Time
}

// ModelTotals accumulates usage for one model.
type ModelTotals struct {
	Model            string
	Calls            int
	Cost             float64
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

// Snapshot is a consistent copy of the ledger contents.
type Snapshot struct {
	Models           []ModelTotals // Sorted by model name
	Operations       []Operation   // In recording order
	TotalCost        float64
	PromptTokens     int
	CompletionTokens int
}

// Ledger accumulates usage for one run. It is safe for concurrent use.
type Ledger struct {
	mu         sync.Mutex
	models     map[string]*ModelTotals
	operations []Operation
	now        func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		models: make(map[string]*ModelTotals),
		now:    time.Now,
	}
}

// Record appends an operation and adds it to its model bucket.
// A missing ID or time is filled in.
func (l *Ledger) Record(op Operation) Operation {
	l.mu.Lock()
	defer l.mu.Unlock()

	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.Time.IsZero() {
		op.Time = l.now()
	}

	totals, ok := l.models[op.Model]
	if !ok {
		totals = &ModelTotals{Model: op.Model}
		l.models[op.Model] = totals
	}
	totals.Calls++
	totals.Cost += op.Cost
	totals.PromptTokens += op.PromptTokens
	totals.CompletionTokens += op.CompletionTokens
	totals.Latency += op.Latency

	l.operations = append(l.operations, op)
	return op
}

// Snapshot returns a copy of the current totals and operations.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		Models:     make([]ModelTotals, 0, len(l.models)),
		Operations: make([]Operation, len(l.operations)),
	}
	copy(snap.Operations, l.operations)

	for _, totals := range l.models {
		snap.Models = append(snap.Models, *totals)
		snap.TotalCost += totals.Cost
		snap.PromptTokens += totals.PromptTokens
		snap.CompletionTokens += totals.CompletionTokens
	}
	sort.Slice(snap.Models, func(i, j int) bool {
		return snap.Models[i].Model < snap.Models[j].Model
	})

	return snap
}
