package segment

import (
	"sync"
	"time"

	"github.com/Anson14/ndnfs-d/pkg/options"
)

// versionGen guarantees the monotonicity a release requires: if a second
// release occurs within the same wall-clock second, it yields a strictly
// greater value than the previous one, and no generated value ever lands
// on the reserved StagingVersion literal.
type versionGen struct {
	mu   sync.Mutex
	last int64
}

var globalVersionGen versionGen

// NewVersion returns a version strictly greater than every version this
// process has generated before, skipping options.StagingVersion.
func NewVersion() int64 {
	return globalVersionGen.next()
}

// newVersionAfter returns a version strictly greater than prev. Since
// every version ever handed out by this process passes through the same
// global generator, a freshly generated version already outranks any
// version previously generated; prev is accepted for documentation at
// call sites and as a defensive floor.
func newVersionAfter(prev int64) int64 {
	g := &globalVersionGen
	g.mu.Lock()
	if g.last < prev {
		g.last = prev
	}
	g.mu.Unlock()
	return g.next()
}

func (g *versionGen) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().Unix()
	if now <= g.last {
		now = g.last + 1
	}
	if now == options.StagingVersion {
		now++
	}
	g.last = now
	return now
}
