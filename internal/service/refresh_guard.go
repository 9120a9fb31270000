package service

import (
	"context"
	"sync"
)

// ExportedRefreshGuard lets _test packages exercise the guard.
type ExportedRefreshGuard = refreshGuard

// refreshGuard allows one catalog refresh per schema source at a time. The
// cron schedule and the ER file watcher can both ask for the same source.
type refreshGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// Begin claims sourceID. It returns false while another refresh holds it.
func (g *refreshGuard) Begin(sourceID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight == nil {
		g.inFlight = make(map[string]struct{})
	}
	if _, busy := g.inFlight[sourceID]; busy {
		return false
	}
	g.inFlight[sourceID] = struct{}{}
	g.wg.Add(1)
	return true
}

// End releases a claim taken by Begin.
func (g *refreshGuard) End(sourceID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inFlight[sourceID]; !busy {
		return
	}
	delete(g.inFlight, sourceID)
	g.wg.Done()
}

func (g *refreshGuard) Active(sourceID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[sourceID]
	return busy
}

// Wait returns once no refresh is in flight, or when ctx ends.
func (g *refreshGuard) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
