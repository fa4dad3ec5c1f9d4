package messaging

import (
	"errors"

	"github.com/nats-io/nats.go"
)

const eventsStream = "PROCESS_EVENTS"

// EventsSubject matches every published process event.
const EventsSubject = "processo.evento.>"

// EnsureStreams creates (or validates) the audit event stream.
func EnsureStreams(js nats.JetStreamContext) error {
	if _, err := js.StreamInfo(eventsStream); err != nil {
		if errors.Is(err, nats.ErrStreamNotFound) {
			if _, addErr := js.AddStream(&nats.StreamConfig{
				Name:      eventsStream,
				Subjects:  []string{EventsSubject},
				Retention: nats.LimitsPolicy,
				Storage:   nats.FileStorage,
				Replicas:  1,
			}); addErr != nil {
				return addErr
			}
		} else {
			return err
		}
	}
	return nil
}
