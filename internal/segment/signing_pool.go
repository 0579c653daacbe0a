package segment

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// signingWorkers bounds how many segments sign concurrently across all
// paths, the same "bounded pool, not one goroutine per task" shape the
// teacher's compaction loop uses for background work.
const signingWorkers = 4

// signingTask is one (path, version, segment) unit of background work.
type signingTask struct {
	ctx     context.Context
	path    string
	version int64
	segment int
}

// signingPool is a bounded worker pool keyed by path: promoting a path
// cancels any still-pending signing tasks for that path's older versions
// before submitting tasks for the newly promoted one.
type signingPool struct {
	engine *Engine
	log    *zap.SugaredLogger

	tasks chan signingTask
	wg    sync.WaitGroup

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // path -> cancel for its current in-flight version
}

func newSigningPool(e *Engine, log *zap.SugaredLogger) *signingPool {
	p := &signingPool{
		engine:  e,
		log:     log,
		tasks:   make(chan signingTask, 256),
		cancels: make(map[string]context.CancelFunc),
	}
	for i := 0; i < signingWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *signingPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		select {
		case <-task.ctx.Done():
			continue
		default:
		}
		if err := p.engine.SignAndStoreSegment(task.ctx, task.path, task.version, task.segment); err != nil {
			p.log.Warnw("background signing failed",
				"path", task.path, "version", task.version, "segment", task.segment, "error", err)
		}
	}
}

// schedule cancels any still-pending tasks for path's previous version
// and submits one task per segment of the newly promoted version.
func (p *signingPool) schedule(path string, version int64, segmentCount int) {
	p.mu.Lock()
	if cancel, ok := p.cancels[path]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancels[path] = cancel
	p.mu.Unlock()

	for seg := 0; seg < segmentCount; seg++ {
		p.tasks <- signingTask{ctx: ctx, path: path, version: version, segment: seg}
	}
}

// close stops accepting new work and waits for in-flight tasks to drain.
func (p *signingPool) close() {
	close(p.tasks)
	p.wg.Wait()
}
