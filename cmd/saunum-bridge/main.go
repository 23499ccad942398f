// cmd/saunum-bridge/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saunum-bridge/internal/command"
	"github.com/tamzrod/saunum-bridge/internal/config"
	"github.com/tamzrod/saunum-bridge/internal/logging"
	"github.com/tamzrod/saunum-bridge/internal/poller"
	"github.com/tamzrod/saunum-bridge/internal/status"
	"github.com/tamzrod/saunum-bridge/internal/writer"
	"github.com/tamzrod/saunum-bridge/internal/writer/mqtt"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// commandQueueDepth bounds pending commands per unit.
const commandQueueDepth = 8

func main() {
	if err := run(); err != nil {
		logger := logging.Default()
		logger.Fatal().Err(err).Msg("saunum-bridge stopped")
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: saunum-bridge <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log := logging.New(cfg.Bridge.Logging, version)
	log.Info().Int("units", len(cfg.Bridge.Units)).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// MQTT
	// --------------------

	m := cfg.Bridge.MQTT
	broker, err := mqtt.Connect(mqtt.Config{
		Broker:            m.Broker,
		ClientID:          m.ClientID,
		Username:          m.Username,
		Password:          m.Password,
		Timeout:           time.Duration(m.TimeoutMs) * time.Millisecond,
		AvailabilityTopic: writer.AvailabilityTopic(m.TopicPrefix),
	}, log)
	if err != nil {
		return err
	}
	defer broker.Close()

	// --------------------
	// Build per-unit pipelines
	// --------------------

	var (
		wg      sync.WaitGroup
		closers []func() error
	)

	// Pollers stop before their sessions close.
	shutdown := func() {
		stop()
		wg.Wait()
		for _, fn := range closers {
			if err := fn(); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}

	for _, unit := range cfg.Bridge.Units {
		if err := startUnit(ctx, log, unit, m, broker, &wg, &closers); err != nil {
			shutdown()
			return err
		}
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdown()
	return nil
}

// startUnit wires poller, writers and command subscription for one unit.
func startUnit(
	ctx context.Context,
	log zerolog.Logger,
	unit config.UnitConfig,
	m config.MQTTConfig,
	broker *mqtt.Client,
	wg *sync.WaitGroup,
	closers *[]func() error,
) error {
	ulog := log.With().Str("unit", unit.ID).Logger()

	// ---- poller ----
	p, closePoller, err := poller.Build(ctx, unit, log)
	if err != nil {
		return fmt.Errorf("poller build failed (unit=%s): %w", unit.ID, err)
	}
	*closers = append(*closers, closePoller)

	// ---- writer plan ----
	plan, err := writer.BuildPlan(unit, m)
	if err != nil {
		return fmt.Errorf("writer plan failed (unit=%s): %w", unit.ID, err)
	}

	dataWriter := writer.New(plan, broker)
	statusWriter := writer.NewDeviceStatusWriter(plan, broker)

	// ---- commands ----
	cmds := make(chan command.Command, commandQueueDepth)
	if err := writer.SubscribeCommands(broker, plan, cmds, ulog); err != nil {
		return fmt.Errorf("command subscribe failed (unit=%s): %w", unit.ID, err)
	}

	// ---- channel between poller and writer ----
	out := make(chan poller.PollResult)

	wg.Add(2)
	go func() {
		defer wg.Done()
		orchestrate(ctx, ulog, out, dataWriter, statusWriter)
	}()
	go func() {
		defer wg.Done()
		p.Run(ctx, out, cmds)
	}()

	ulog.Info().Str("state_topic", plan.StateTopic()).Msg("unit started")
	return nil
}

// orchestrate owns the unit status: poll results and a 1 Hz seconds ticker.
func orchestrate(
	ctx context.Context,
	log zerolog.Logger,
	in <-chan poller.PollResult,
	data writer.Writer,
	sw writer.StatusWriter,
) {
	tracker := status.NewTracker()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full status publish on start (identity re-assert).
	if err := sw.WriteStatus(tracker.Snapshot()); err != nil {
		log.Warn().Err(err).Msg("status write failed on start")
	}

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			// --- data delivery ---
			if err := data.Write(res); err != nil {
				log.Warn().Err(err).Msg("writer error")
			}

			if res.Err != nil {
				log.Warn().Err(res.Err).Msg("poll failed")
			}

			// --- status update (device-level truth) ---
			if tracker.Observe(res.Err) {
				if err := sw.WriteStatus(tracker.Snapshot()); err != nil {
					log.Warn().Err(err).Msg("status write failed")
				}
			}

		case <-secTicker.C:
			// Tick 1 Hz while not OK.
			if tracker.Tick() {
				if err := sw.WriteStatus(tracker.Snapshot()); err != nil {
					log.Warn().Err(err).Msg("status seconds tick write failed")
				}
			}
		}
	}
}
