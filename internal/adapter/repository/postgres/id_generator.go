package postgres

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/antscrawling/cpfsim/internal/infrastructure/postgres/generated"
)

// ULIDGenerator generates run IDs that sort by creation time, including
// IDs created within the same millisecond.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

// SequenceGenerator draws entry and row references from a database sequence,
// so every process writing to the same database shares one ordering.
type SequenceGenerator struct {
	queries *generated.Queries
}

// NewSequenceGenerator creates a reference generator over ledger_reference_seq.
func NewSequenceGenerator(db generated.DBTX) *SequenceGenerator {
	return &SequenceGenerator{queries: generated.New(db)}
}

// Next returns the next reference.
func (g *SequenceGenerator) Next(ctx context.Context) (int64, error) {
	return g.queries.NextReference(ctx)
}
