package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates import ids "import-0001", "import-0002", ...
//
// The store uses UUIDv7 ids in production; tests swap this in to get
// byte-identical output.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix means "import".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "import"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
