package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
	"github.com/cartalabs/carta/internal/core/ports/driving"
	"github.com/cartalabs/carta/internal/logger"
)

// DefaultPumpInterval is the default tick between processing sweeps.
const DefaultPumpInterval = 2 * time.Second

// Pump is the in-repo stand-in for the external scheduler: on every
// tick it advances each non-terminal file by exactly one processor
// step. Files claimed by another worker are skipped and picked up on a
// later tick.
type Pump struct {
	files     driven.FileStore
	processor driving.Processor
	interval  time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPump creates a pump. A non-positive interval uses the default.
func NewPump(files driven.FileStore, processor driving.Processor, interval time.Duration) *Pump {
	if interval <= 0 {
		interval = DefaultPumpInterval
	}
	return &Pump{
		files:     files,
		processor: processor,
		interval:  interval,
	}
}

// Start begins the pump loop. This method blocks until Stop is called
// or the context is cancelled.
func (p *Pump) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil // Already running
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	// Sweep immediately on startup, then on every tick.
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// Stop gracefully shuts down the pump.
func (p *Pump) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
}

// Sweep advances every non-terminal file one step. Exposed for
// one-shot callers; Start invokes it on each tick.
func (p *Pump) Sweep(ctx context.Context) {
	p.sweep(ctx)
}

func (p *Pump) sweep(ctx context.Context) {
	p.wg.Add(1)
	defer p.wg.Done()

	files, err := p.files.ListUnfinished(ctx)
	if err != nil {
		logger.Warn("pump: list unfinished files: %v", err)
		return
	}

	for i := range files {
		if ctx.Err() != nil {
			return
		}
		progress, err := p.processor.Step(ctx, files[i].ID)
		if err != nil {
			if errors.Is(err, domain.ErrFileClaimed) {
				logger.Debug("pump: %s claimed elsewhere, skipping", files[i].ID)
				continue
			}
			logger.Warn("pump: step %s: %v", files[i].ID, err)
			continue
		}
		logger.Debug("pump: %s -> %s", files[i].ID, progress.State.Phase)
	}
}
