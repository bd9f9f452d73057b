package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/finlit/internal/logger"
	"github.com/julianstephens/finlit/internal/models"
)

// Named pairs a sink with the name it is configured under.
type Named struct {
	Name string
	Sink Sink
}

// Router fans a reminder out to the sinks configured for its channel, or
// to the fallback list when the channel has none. Delivery succeeds when at
// least one sink accepts it.
type Router struct {
	routes   map[models.Channel][]Named
	fallback []Named
}

func NewRouter(fallback ...Named) *Router {
	return &Router{routes: map[models.Channel][]Named{}, fallback: fallback}
}

// Route replaces the sinks used for channel.
func (r *Router) Route(channel models.Channel, sinks ...Named) *Router {
	r.routes[channel] = sinks
	return r
}

func (r *Router) sinksFor(channel models.Channel) []Named {
	if sinks := r.routes[channel]; len(sinks) > 0 {
		return sinks
	}
	return r.fallback
}

func (r *Router) Notify(ctx context.Context, rem models.Reminder) error {
	sinks := r.sinksFor(rem.Channel)
	if len(sinks) == 0 {
		return fmt.Errorf("no notification sink for channel %q", rem.Channel)
	}

	var errs []error
	delivered := 0
	for _, n := range sinks {
		if err := n.Sink.Notify(ctx, rem); err != nil {
			logger.Warn("Notification sink failed", "sink", n.Name, "reminder_id", rem.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name, err))
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}
