package app

import (
	"context"
	"log"
	"sync"
	"time"

	mcpserver "drawboard/internal/mcp"
	"drawboard/internal/service"
	"drawboard/internal/storage"
)

// diagramWatcher polls the database for diagrams changed by another
// process (a second MCP server, the CLI) and reloads the ones this process
// has open. It also surfaces approvals requested by standalone MCP
// processes so an attached UI can resolve them.
type diagramWatcher struct {
	ctx       context.Context
	diagrams  *service.DiagramService
	store     *storage.DiagramStore
	approvals *storage.ApprovalStore
	emitter   service.EventEmitter
	interval  time.Duration

	mu     sync.Mutex
	stamps map[string]time.Time
	// Track emitted approval IDs to avoid re-emission
	emittedApprovals map[string]bool

	stopCh chan struct{}
	done   chan struct{}
}

func newDiagramWatcher(ctx context.Context, diagrams *service.DiagramService, store *storage.DiagramStore, approvals *storage.ApprovalStore, emitter service.EventEmitter, interval time.Duration) *diagramWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &diagramWatcher{
		ctx:              ctx,
		diagrams:         diagrams,
		store:            store,
		approvals:        approvals,
		emitter:          emitter,
		interval:         interval,
		stamps:           map[string]time.Time{},
		emittedApprovals: map[string]bool{},
	}
}

// Start begins the polling loop.
func (w *diagramWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop and waits for it.
func (w *diagramWatcher) Stop() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	<-w.done
	w.stopCh = nil
}

func (w *diagramWatcher) pollLoop() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check()
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *diagramWatcher) check() {
	w.checkDiagrams()
	w.checkApprovals()
}

// checkDiagrams reloads loaded diagrams whose stamp moved since the last
// poll. The first poll only records stamps.
func (w *diagramWatcher) checkDiagrams() {
	stamps, err := w.store.Stamps()
	if err != nil {
		log.Printf("[watcher] stamps: %v", err)
		return
	}

	loaded := map[string]bool{}
	for _, id := range w.diagrams.Loaded() {
		loaded[id] = true
	}

	var changed []string
	seen := map[string]bool{}
	w.mu.Lock()
	for _, st := range stamps {
		seen[st.ID] = true
		prev, ok := w.stamps[st.ID]
		w.stamps[st.ID] = st.UpdatedAt
		if ok && !prev.Equal(st.UpdatedAt) && loaded[st.ID] {
			changed = append(changed, st.ID)
		}
	}
	for id := range w.stamps {
		if !seen[id] {
			delete(w.stamps, id)
		}
	}
	w.mu.Unlock()

	for _, id := range changed {
		if _, err := w.diagrams.Reload(w.ctx, id); err != nil {
			log.Printf("[watcher] reload %s: %v", id, err)
		}
	}
}

// ── Pending MCP approvals (cross-process IPC) ─────────────

func (w *diagramWatcher) checkApprovals() {
	pending, err := w.approvals.Pending()
	if err != nil {
		return
	}

	live := map[string]bool{}
	for _, p := range pending {
		live[p.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[p.ID]
		w.emittedApprovals[p.ID] = true
		w.mu.Unlock()
		if alreadySent {
			continue
		}
		w.emitter.Emit(w.ctx, mcpserver.EventApprovalRequired, mcpserver.PendingAction{
			ID:          p.ID,
			Tool:        p.Tool,
			Description: p.Description,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
			Metadata:    p.Metadata,
		})
	}

	// Forget resolved approvals; the requesting process deletes its row.
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}
