package server

import (
	"sync/atomic"
	"time"

	"chatgate/models"
	"chatgate/protocol"

	"go.uber.org/zap"
)

// Router fans persisted messages out to the live connections of a chat.
type Router struct {
	registry *Registry
	log      *zap.Logger
	now      func() time.Time

	delivered atomic.Int64
	failed    atomic.Int64
}

func NewRouter(registry *Registry, log *zap.Logger) *Router {
	return &Router{registry: registry, log: log, now: time.Now}
}

// Broadcast delivers msg to every connection subscribed to its chat except
// exclude's and returns the number of successful deliveries. A failed
// delivery is logged and counted, never returned.
func (r *Router) Broadcast(msg *models.Message, exclude models.UserID) int {
	frame, err := protocol.FormatMessage(msg, r.now())
	if err != nil {
		r.log.Error("Failed to encode message", zap.Int64("message_id", msg.ID), zap.Error(err))
		return 0
	}

	var delivered int
	for _, conn := range r.registry.ConnectionsFor(msg.ChatID, exclude) {
		if err := conn.Send(frame); err != nil {
			r.failed.Add(1)
			r.log.Warn("Delivery failed",
				zap.String("conn_id", conn.ID()),
				zap.Int64("chat_id", int64(msg.ChatID)),
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		delivered++
	}
	r.delivered.Add(int64(delivered))
	return delivered
}

// Counters returns the total number of successful and failed deliveries.
func (r *Router) Counters() (delivered, failed int64) {
	return r.delivered.Load(), r.failed.Load()
}
