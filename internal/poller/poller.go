package poller

import (
	"context"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/Wonki4/k8s-report-dashboard/internal/domain"
)

// Result is the outcome of one poll, tagged with the generation of the scope
// selection that started it.
type Result struct {
	Generation uint64
	Scope      string
	Snapshot   domain.Snapshot
	Err        error
	At         time.Time
}

// Poller fetches the current scope immediately and then on every tick.
// Selecting a new scope cancels the previous loop together with its
// in-flight requests, and results of older generations are never delivered.
type Poller struct {
	repo     domain.TelemetryRepo
	interval time.Duration
	out      chan Result

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	refresh chan struct{}
	stopped bool
}

func New(repo domain.TelemetryRepo, interval time.Duration) *Poller {
	base, stop := context.WithCancel(context.Background())
	return &Poller{
		repo:     repo,
		interval: interval,
		out:      make(chan Result, 1),
		base:     base,
		stop:     stop,
	}
}

// Results is closed by Stop.
func (p *Poller) Results() <-chan Result { return p.out }

func (p *Poller) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// SetScope starts polling scope and returns its generation.
func (p *Poller) SetScope(scope string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return p.gen
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	ctx, cancel := context.WithCancel(p.base)
	p.cancel = cancel
	p.refresh = make(chan struct{}, 1)

	klog.V(2).InfoS("Polling scope", "scope", scope, "generation", p.gen)
	p.wg.Add(1)
	go p.loop(ctx, p.gen, scope, p.refresh)
	return p.gen
}

// Refresh polls the current scope now without waiting for the next tick.
func (p *Poller) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refresh == nil {
		return
	}
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.stop()
	p.wg.Wait()
	close(p.out)
}

func (p *Poller) loop(ctx context.Context, gen uint64, scope string, refresh <-chan struct{}) {
	defer p.wg.Done()
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		p.poll(ctx, gen, scope)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		case <-refresh:
		}
	}
}

func (p *Poller) poll(ctx context.Context, gen uint64, scope string) {
	snap, err := Fetch(ctx, p.repo, scope, nil)
	if ctx.Err() != nil {
		return // superseded or stopped
	}
	if err != nil {
		klog.ErrorS(err, "Poll failed", "scope", scope)
	}
	res := Result{Generation: gen, Scope: scope, Snapshot: snap, Err: err, At: time.Now()}
	if gen != p.Generation() {
		return
	}
	select {
	case p.out <- res:
	case <-ctx.Done():
	}
}
