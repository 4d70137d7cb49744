package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/impostorgame/internal/dependencies/ids"
)

// SequentialIDs hands out predictable IDs ("player-1", "player-2", ...)
type SequentialIDs struct {
	mu     sync.Mutex
	Prefix string
	next   int
}

// Ensure SequentialIDs implements Generator
var _ ids.Generator = (*SequentialIDs)(nil)

// NewSequentialIDs creates a generator using the given prefix
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{Prefix: prefix}
}

// NewID returns the next ID in sequence
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}
