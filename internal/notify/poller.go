// Package notify implements the pull-based notification poller used by
// client sessions. Delivery has no acknowledgement: each poll fetches the
// full list for the user and a purely session-local heuristic decides
// whether anything is new.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/davinrkh/finbook/internal/domain/entity"
	"go.uber.org/zap"
)

// FetchFunc returns the user's notifications, newest first.
type FetchFunc func(ctx context.Context) ([]*entity.Notification, error)

// AlertFunc is invoked when a poll sees a new top notification.
type AlertFunc func(n *entity.Notification)

// Poller polls on a fixed interval and raises an alert when the top
// notification changes. The first poll after construction never alerts:
// a fresh session treats everything already delivered as seen, so
// reopening the app does not replay history as new.
type Poller struct {
	fetch    FetchFunc
	alert    AlertFunc
	interval time.Duration
	logger   *zap.Logger

	// newTicker is swappable so tests can drive the loop with a fake clock.
	newTicker func(time.Duration) *time.Ticker

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	firstPoll  bool
	lastSeenID int64
}

// NewPoller creates a poller for one client session.
func NewPoller(fetch FetchFunc, alert AlertFunc, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		fetch:     fetch,
		alert:     alert,
		interval:  interval,
		logger:    logger,
		newTicker: time.NewTicker,
		firstPoll: true,
	}
}

// Start launches the polling loop. It polls once immediately, then on
// every interval tick until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	p.logger.Info("Notification poller started", zap.Duration("interval", p.interval))

	go p.loop(ctx)
}

// Stop halts the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.running = false
	p.cancel()

	p.logger.Info("Notification poller stopped")
}

func (p *Poller) loop(ctx context.Context) {
	ticker := p.newTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll performs one fetch-and-compare cycle. Transient fetch failures are
// swallowed: the loop keeps retrying on the next tick.
func (p *Poller) Poll(ctx context.Context) {
	notifications, err := p.fetch(ctx)
	if err != nil {
		p.logger.Warn("Notification poll failed, will retry next tick", zap.Error(err))
		return
	}
	if len(notifications) == 0 {
		return
	}

	top := notifications[0]

	p.mu.Lock()
	first := p.firstPoll
	changed := top.ID != p.lastSeenID
	p.firstPoll = false
	p.lastSeenID = top.ID
	p.mu.Unlock()

	if first || !changed {
		return
	}

	p.logger.Debug("New notification detected",
		zap.Int64("notification_id", top.ID),
		zap.String("type", string(top.Type)))
	p.alert(top)
}
