package fsop

import "sync"

// Handle represents one open(2) call's worth of state. The dispatcher
// hands one back from Open and expects it returned to Release exactly
// once.
type Handle struct {
	path           string
	writable       bool
	currentVersion int64
	lock           *sync.Mutex
}

// Path reports the canonical path this handle was opened against.
func (h *Handle) Path() string { return h.path }

// Writable reports whether this handle staged a write buffer on open.
func (h *Handle) Writable() bool { return h.writable }
