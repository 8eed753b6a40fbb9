package pubsub

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Option configures a Bus at construction time. The resulting
// configuration is immutable for the lifetime of the bus.
type Option func(*busConfig)

// busConfig contains configuration for the bus.
type busConfig struct {
	// domainMin and domainMax bound the valid priority domain (inclusive).
	domainMin Priority
	domainMax Priority

	// defaultPriority is used when Publish or Subscribe omit a priority.
	defaultPriority Priority

	// defaultGroup is the group subscribers join when none is given.
	defaultGroup GroupName

	// strictGroups makes group toggles fail on unknown names instead of
	// auto-creating them.
	strictGroups bool

	// clock supplies monotonic time for budget enforcement.
	clock Clock

	// sink receives per-subscriber callback failures.
	// When nil, failures are logged through the configured logger.
	sink ErrorSink

	// logger receives debug logs for every mutating operation and error
	// logs for callback failures without a sink.
	logger zerolog.Logger
}

// defaultBusConfig returns sensible default configuration.
func defaultBusConfig() busConfig {
	return busConfig{
		domainMin:       PriorityLow,
		domainMax:       PriorityCritical,
		defaultPriority: PriorityNormal,
		defaultGroup:    DefaultGroup,
		clock:           systemClock{},
		logger:          zerolog.Nop(),
	}
}

// validate checks the configuration for internal consistency.
func (c *busConfig) validate() error {
	if c.domainMin > c.domainMax {
		return fmt.Errorf("priority domain [%d, %d] is empty", c.domainMin, c.domainMax)
	}
	if !c.inDomain(c.defaultPriority) {
		return fmt.Errorf("default priority %d outside domain [%d, %d]: %w",
			c.defaultPriority, c.domainMin, c.domainMax, ErrInvalidPriority)
	}
	if c.defaultGroup == "" {
		return fmt.Errorf("default group name cannot be empty")
	}
	return nil
}

// inDomain reports whether p is inside the configured priority domain.
func (c *busConfig) inDomain(p Priority) bool {
	return p >= c.domainMin && p <= c.domainMax
}

// WithPriorityDomain declares the ordered domain of valid priority values
// (inclusive bounds). Publish and Subscribe reject priorities outside it.
func WithPriorityDomain(min, max Priority) Option {
	return func(c *busConfig) {
		c.domainMin = min
		c.domainMax = max
	}
}

// WithDefaultPriority sets the priority used when none is given.
func WithDefaultPriority(p Priority) Option {
	return func(c *busConfig) {
		c.defaultPriority = p
	}
}

// WithDefaultGroup renames the implicit always-active group. An empty
// name is ignored and the default group keeps its current name.
func WithDefaultGroup(name GroupName) Option {
	return func(c *busConfig) {
		if name != "" {
			c.defaultGroup = name
		}
	}
}

// WithStrictGroups makes ActivateGroup and DeactivateGroup fail with
// ErrUnknownGroup on names that were never referenced, instead of
// auto-creating them.
func WithStrictGroups() Option {
	return func(c *busConfig) {
		c.strictGroups = true
	}
}

// WithClock sets the clock used for budget enforcement.
func WithClock(clock Clock) Option {
	return func(c *busConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithErrorSink sets the sink that receives callback failures.
func WithErrorSink(sink ErrorSink) Option {
	return func(c *busConfig) {
		c.sink = sink
	}
}

// WithLogger sets the structured logger used by the bus.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *busConfig) {
		c.logger = logger
	}
}
