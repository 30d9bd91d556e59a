package detect

import (
	"sync"
	"time"
)

// Result is the resolved classification published by the detection loop.
type Result struct {
	Name       string             // Resolved label name, UnmatchedName when nothing matched
	Label      Label              // Name mapped onto the known label set
	Candidates []string           // Raw candidate set the name was resolved from
	Scores     map[string]float64 // Per-label scores of the pass
	At         time.Time          // Capture time
}

// NewResult resolves a classification into a result.
func NewResult(c Classification, at time.Time) Result {
	name := Resolve(c.Candidates)
	return Result{
		Name:       name,
		Label:      ParseLabel(name),
		Candidates: c.Candidates,
		Scores:     c.Scores,
		At:         at,
	}
}

// Is reports whether the result resolved to l.
func (r Result) Is(l Label) bool {
	return r.Label == l
}

// Cell is the single piece of state shared by the detection loop (writer) and
// the control loop (reader). All access goes through the lock.
type Cell struct {
	mu      sync.RWMutex
	current Result
	seq     uint64
}

// NewCell returns a cell holding an unmatched result.
func NewCell() *Cell {
	return &Cell{current: Result{Name: UnmatchedName, Label: Unmatched}}
}

// Store publishes r and reports whether the resolved name differs from the
// previous one.
func (c *Cell) Store(r Result) (prev Result, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev = c.current
	c.current = r
	c.seq++
	return prev, prev.Name != r.Name
}

// Load returns the latest result. Slices and maps in the result are never
// mutated after publication, so sharing them is safe.
func (c *Cell) Load() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Seq returns the number of results published so far.
func (c *Cell) Seq() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seq
}
