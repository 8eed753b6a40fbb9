package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wkmanire/publishsubscribe/pubsub"
)

// Event types used by the simulation.
const (
	evCollision pubsub.EventType = "collision"
	evInput     pubsub.EventType = "input"
	evTick      pubsub.EventType = "tick"
)

// simOptions controls the simulation. Environment variables override the
// built-in defaults; flags override both.
type simOptions struct {
	Frames         int    `env:"PUBSUB_SIM_FRAMES"`
	EventsPerFrame int    `env:"PUBSUB_SIM_EVENTS_PER_FRAME"`
	BudgetMS       int    `env:"PUBSUB_SIM_BUDGET_MS"`
	Exhaustive     bool   `env:"PUBSUB_SIM_EXHAUSTIVE"`
	ConfigPath     string `env:"PUBSUB_SIM_CONFIG"`
	LogLevel       string `env:"PUBSUB_SIM_LOG_LEVEL"`
	MetricsAddr    string `env:"PUBSUB_SIM_METRICS_ADDR"`
	Seed           int64  `env:"PUBSUB_SIM_SEED"`
}

func defaultSimOptions() simOptions {
	opts := simOptions{
		Frames:         120,
		EventsPerFrame: 8,
		BudgetMS:       2,
		LogLevel:       "info",
		Seed:           1,
	}
	if err := env.Parse(&opts); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring environment: %v\n", err)
	}
	return opts
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func runSim(opts simOptions) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parseLevel(opts.LogLevel)).
		With().Timestamp().Logger()

	busOpts := []pubsub.Option{pubsub.WithLogger(logger)}
	if opts.ConfigPath != "" {
		fileOpts, err := pubsub.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		busOpts = append(busOpts, fileOpts...)
	}

	bus, err := pubsub.New(busOpts...)
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := reg.Register(pubsub.NewCollector(bus)); err != nil {
			return err
		}
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info().Str("addr", opts.MetricsAddr).Msg("serving metrics")
			if err := http.ListenAndServe(opts.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if err := subscribeWorld(bus, logger); err != nil {
		return err
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(opts.Seed))

	var carried int
	for frame := 0; frame < opts.Frames; frame++ {
		publishFrame(bus, rng, opts.EventsPerFrame, frame)

		dispatchOpts := []pubsub.DispatchOption{}
		if !opts.Exhaustive {
			dispatchOpts = append(dispatchOpts,
				pubsub.WithBudget(time.Duration(opts.BudgetMS)*time.Millisecond))
		}
		summary := bus.Dispatch(ctx, dispatchOpts...)

		if !summary.QueueEmpty {
			carried++
		}
		logger.Debug().
			Int("frame", frame).
			Int("delivered", summary.Delivered).
			Bool("queue_empty", summary.QueueEmpty).
			Dur("elapsed", summary.Elapsed).
			Msg("frame")

		// Every 30 frames, toggle the telemetry group like a debug overlay.
		if frame%30 == 29 {
			var toggleErr error
			if frame%60 == 29 {
				toggleErr = bus.DeactivateGroup("telemetry")
			} else {
				toggleErr = bus.ActivateGroup("telemetry")
			}
			if toggleErr != nil {
				return toggleErr
			}
		}
	}

	stats := bus.Stats()
	logger.Info().
		Uint64("published", stats.EventsPublished).
		Uint64("delivered", stats.EventsDelivered).
		Uint64("invoked", stats.CallbacksInvoked).
		Uint64("errors", stats.CallbackErrors).
		Uint64("panics", stats.CallbackPanics).
		Int("pending", stats.PendingEvents).
		Int("frames_over_budget", carried).
		Msg("simulation complete")

	return nil
}

// subscribeWorld registers the simulated systems: physics before gameplay
// before audio, with telemetry in its own toggleable group.
func subscribeWorld(bus *pubsub.Bus, logger zerolog.Logger) error {
	work := func(d time.Duration) pubsub.CallbackFunc {
		return func(ctx context.Context, payload any) error {
			time.Sleep(d)
			return nil
		}
	}

	subs := []struct {
		typ  pubsub.EventType
		cb   pubsub.CallbackFunc
		opts []pubsub.SubscribeOption
	}{
		{evCollision, work(50 * time.Microsecond), []pubsub.SubscribeOption{pubsub.WithPriority(pubsub.PriorityCritical)}},
		{evCollision, work(100 * time.Microsecond), []pubsub.SubscribeOption{pubsub.WithPriority(pubsub.PriorityHigh)}},
		{evCollision, work(20 * time.Microsecond), []pubsub.SubscribeOption{pubsub.WithPriority(pubsub.PriorityLow)}},
		{evInput, work(30 * time.Microsecond), []pubsub.SubscribeOption{pubsub.WithPriority(pubsub.PriorityHigh)}},
		{evTick, work(10 * time.Microsecond), nil},
	}
	for _, s := range subs {
		if _, err := bus.Subscribe(s.typ, s.cb, s.opts...); err != nil {
			return err
		}
	}

	// Telemetry listens to everything at low priority.
	for _, typ := range []pubsub.EventType{evCollision, evInput, evTick} {
		_, err := bus.SubscribeFunc(typ, func(ctx context.Context, payload any) error {
			logger.Debug().Str("event_type", string(typ)).Msg("telemetry")
			return nil
		}, pubsub.WithPriority(pubsub.PriorityLow), pubsub.WithGroup("telemetry"))
		if err != nil {
			return err
		}
	}

	return nil
}

// publishFrame queues a frame's worth of events with a plausible mix of
// types and priorities.
func publishFrame(bus *pubsub.Bus, rng *rand.Rand, count, frame int) {
	for i := 0; i < count; i++ {
		typ := evTick
		priority := pubsub.PriorityNormal
		switch rng.Intn(4) {
		case 0:
			typ = evCollision
			priority = pubsub.PriorityHigh
		case 1:
			typ = evInput
			priority = pubsub.PriorityCritical
		}
		if _, err := bus.Publish(typ, frame, pubsub.AtPriority(priority)); err != nil {
			// Only possible with a misconfigured priority domain.
			panic(err)
		}
	}
}
