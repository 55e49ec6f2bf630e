package evbroker

import (
	"log/slog"

	"github.com/dshills/evbroker/internal/namespace"
)

// Logging helpers. All are nil-safe: without a configured logger the
// broker stays silent.

func (b *Broker) logRegister(sub *subscription) {
	if b.config.logger == nil {
		return
	}
	b.config.logger.Debug("subscriber registered",
		slog.String("namespace", sub.Namespace()),
		slog.String("subscription_id", sub.id),
		slog.Int("priority", sub.config.Priority),
		slog.String("mode", sub.config.DeliveryMode.String()),
	)
}

func (b *Broker) logUnregister(sub *subscription) {
	if b.config.logger == nil {
		return
	}
	b.config.logger.Debug("subscriber removed",
		slog.String("namespace", sub.Namespace()),
		slog.String("subscription_id", sub.id),
	)
}

func (b *Broker) logEmit(target string, matched int, includeAsync bool) {
	if b.config.logger == nil {
		return
	}
	b.config.logger.Debug("event emitted",
		slog.String("namespace", target),
		slog.Int("subscribers", matched),
		slog.Bool("async", includeAsync),
	)
}

func (b *Broker) logFailure(err error) {
	if b.config.logger == nil {
		return
	}
	b.config.logger.Error("subscriber failed",
		slog.String("error", err.Error()),
	)
}

func (b *Broker) logMetaDrop(meta namespace.Namespace, err error) {
	if b.config.logger == nil {
		return
	}
	b.config.logger.Error("meta-event dropped",
		slog.String("namespace", meta.String()),
		slog.String("error", err.Error()),
	)
}
