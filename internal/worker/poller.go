package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Poller reloads the dataset on a fixed interval. It covers sources that do
// not announce changes, such as a spreadsheet edited in place.
type Poller struct {
	reloader Reloader
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewPoller(reloader Reloader, interval time.Duration) *Poller {
	return &Poller{reloader: reloader, interval: interval}
}

// Start begins the polling loop. Returns an error if already running.
func (p *Poller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("invalid poll interval %v", p.interval)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx, p.stopCh, p.doneCh)

	slog.InfoContext(ctx, "Dataset poller started", "interval", p.interval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to expire.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Dataset poller stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Dataset poller stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the poller is currently running
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.reloader.Reload(ctx); err != nil {
		// Keep serving the previous dataset and try again next tick.
		slog.WarnContext(ctx, "Periodic dataset reload failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "Periodic dataset reload complete", "generation", p.reloader.Generation())
}
