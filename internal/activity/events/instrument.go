// internal/activity/events/instrument.go
package events

import (
	"context"

	"mergington-activities/internal/common/metrics"
)

type instrumented struct {
	sink string
	next Publisher
}

// Instrument counts publish outcomes for sink in EventsPublishedTotal.
func Instrument(sink string, next Publisher) Publisher {
	return &instrumented{sink: sink, next: next}
}

func (i *instrumented) Publish(ctx context.Context, event Event) error {
	err := i.next.Publish(ctx, event)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EventsPublishedTotal.WithLabelValues(i.sink, status).Inc()
	return err
}
