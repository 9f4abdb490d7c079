package services

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/events"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// publish delivers e after a commit. Broker failures are logged only.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	e.OccurredAt = time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, e); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event":    e.Type,
			"order_id": e.OrderID,
		}).Error("Failed to publish event")
	}
}
