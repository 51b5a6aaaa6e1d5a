// File: internal/browser/netmon.go
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// networkMonitor tracks in-flight requests on a session target so Navigate
// can wait for the network to go quiet after the load event.
type networkMonitor struct {
	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
}

func newNetworkMonitor() *networkMonitor {
	return &networkMonitor{
		inflight:     make(map[network.RequestID]struct{}),
		lastActivity: time.Now(),
	}
}

// attach subscribes the monitor to the session's CDP event stream. The
// listener lives until the session context is cancelled.
func (m *networkMonitor) attach(sessionCtx context.Context) {
	chromedp.ListenTarget(sessionCtx, m.handle)
}

func (m *networkMonitor) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		m.mu.Lock()
		m.inflight[e.RequestID] = struct{}{}
		m.lastActivity = time.Now()
		m.mu.Unlock()
	case *network.EventLoadingFinished:
		m.finish(e.RequestID)
	case *network.EventLoadingFailed:
		m.finish(e.RequestID)
	}
}

func (m *networkMonitor) finish(id network.RequestID) {
	m.mu.Lock()
	delete(m.inflight, id)
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// reset clears tracking state at the start of a navigation. Requests from
// the previous document would otherwise pin the idle wait forever.
func (m *networkMonitor) reset() {
	m.mu.Lock()
	m.inflight = make(map[network.RequestID]struct{})
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// WaitIdle blocks until no request has been in flight for the quiet window,
// or the context expires.
func (m *networkMonitor) WaitIdle(ctx context.Context, quiet time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if m.idleFor(quiet) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *networkMonitor) idleFor(quiet time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inflight) == 0 && time.Since(m.lastActivity) >= quiet
}
