package watcher

import (
	"context"
	"sort"
	"time"

	"github.com/ritzau/check-circular-import/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive re-analysis.
// Events are released once no new event arrived for the quiet period, or
// once maxWait has passed since the first held event, whichever is first.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run merges held events into one. The merged event has the strongest
// type seen and the sorted, distinct paths of all held events.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet, deadline <-chan time.Time
		quietTimer      *time.Timer
		held            map[string]bool
		heldType        ChangeType
		eventCount      int
	)

	flush := func() {
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount, "paths", len(held))

		paths := make([]string, 0, len(held))
		for p := range held {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		select {
		case d.output <- ChangeEvent{Type: heldType, Paths: paths, Timestamp: time.Now()}:
		case <-ctx.Done():
		}

		held = nil
		heldType = ChangeTypeSource
		eventCount = 0
		quiet, deadline = nil, nil
		if quietTimer != nil {
			quietTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			if held == nil {
				held = make(map[string]bool)
				deadline = time.After(d.maxWait)
			}
			for _, p := range event.Paths {
				held[p] = true
			}
			if event.Type > heldType {
				heldType = event.Type
			}
			eventCount++

			// Restart the quiet period
			if quietTimer == nil {
				quietTimer = time.NewTimer(d.quietPeriod)
			} else {
				quietTimer.Stop()
				quietTimer.Reset(d.quietPeriod)
			}
			quiet = quietTimer.C

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
