package evbroker

import "log/slog"

// brokerConfig holds broker-level configuration.
type brokerConfig struct {
	logger     *slog.Logger
	metrics    MetricsRecorder
	metaEvents bool
}

func defaultBrokerConfig() brokerConfig {
	return brokerConfig{
		logger:     nil,
		metrics:    NoopMetrics{},
		metaEvents: true,
	}
}

// Option configures a Broker.
type Option func(*brokerConfig)

// WithLogger sets a structured logger for broker activity. Registration,
// removal, and emissions are logged at debug level, subscriber failures
// at error level. Without a logger the broker is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *brokerConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Defaults to NoopMetrics.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *brokerConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithMetaEvents enables or disables meta-event emission wholesale.
// Meta-events are on by default.
func WithMetaEvents(enabled bool) Option {
	return func(c *brokerConfig) {
		c.metaEvents = enabled
	}
}
