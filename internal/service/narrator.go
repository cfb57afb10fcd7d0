package service

import (
	"context"
	"fmt"
	"time"
)

const defaultHeartbeatInterval = 3 * time.Second

// Narrator produces progress messages while a profile run is in flight.
type Narrator interface {
	Narrate(ctx context.Context, companyName string) <-chan string
}

// defaultMilestones approximate the phases of the automation task. The worker
// exposes no real progress, so these are synthesized on a timer.
var defaultMilestones = []string{
	"🌐 Opening browser session...",
	"🔎 Searching for the official website and LinkedIn page...",
	"🛠️ Reading careers pages for the tech stack...",
	"📰 Looking for recent news and buying signals...",
	"👥 Identifying technology leaders...",
}

// HeartbeatNarrator is a best-effort narrator. It emits Milestones one per
// Interval, then a heartbeat every Interval until the context is done.
type HeartbeatNarrator struct {
	Interval   time.Duration
	Milestones []string
}

// NewHeartbeatNarrator returns a narrator with the default milestones.
func NewHeartbeatNarrator(interval time.Duration) *HeartbeatNarrator {
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	return &HeartbeatNarrator{Interval: interval, Milestones: defaultMilestones}
}

// Narrate starts emitting messages. The channel is closed once ctx is done.
func (n *HeartbeatNarrator) Narrate(ctx context.Context, companyName string) <-chan string {
	interval := n.Interval
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}

	ch := make(chan string)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			msg := fmt.Sprintf("⏳ Still researching %s...", companyName)
			if i < len(n.Milestones) {
				msg = n.Milestones[i]
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
