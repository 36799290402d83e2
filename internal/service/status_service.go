package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"chargepulse/internal/clients"
	"chargepulse/internal/engine"
	"chargepulse/internal/models"
	"chargepulse/internal/observability"
	"chargepulse/internal/redisstore"
	"chargepulse/internal/timing"
)

// Notifier delivers a serialized live-update projection to a connected
// client.
type Notifier interface {
	Push(connectionID string, payload []byte) error
}

// StatusService runs one evaluation of a charging session per trigger event:
// ping, fetch, decide, persist, broadcast. Each evaluation is independent;
// persisted state lives entirely in the external table service.
type StatusService struct {
	table    *clients.TableClient
	status   *clients.StatusClient
	notifier Notifier
	live     *redisstore.LiveStore
	executor *engine.Executor
	mapper   *engine.Mapper
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatusService wires the orchestrator. live may be nil when the cache is
// disabled.
func NewStatusService(
	table *clients.TableClient,
	status *clients.StatusClient,
	notifier Notifier,
	live *redisstore.LiveStore,
	executor *engine.Executor,
	mapper *engine.Mapper,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		table:    table,
		status:   status,
		notifier: notifier,
		live:     live,
		executor: executor,
		mapper:   mapper,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate decides the next status for the session named by the event. Only
// fetch, strategy and chain failures abort; everything downstream of a
// successful decision degrades gracefully.
func (s *StatusService) Evaluate(ctx context.Context, event models.TriggerEvent) (models.ChargingStatus, error) {
	started := s.now()
	defer func() {
		s.metrics.EvaluationTiming.Observe(time.Since(started).Seconds())
	}()

	// Informational only; a dead status service must not block the flow.
	s.status.Ping(ctx, event.BookingID, event.VendorID, event.ExpandedVehicleData)

	row, err := s.table.ReadSession(ctx, event.BookingID, event.VendorID)
	if err != nil {
		return "", &FetchError{BookingID: event.BookingID, Err: err}
	}

	snapshot, err := models.NewSessionSnapshot(event, row)
	if err != nil {
		return "", &FetchError{BookingID: event.BookingID, Err: err}
	}

	durations, err := timing.Compute(s.now(), snapshot.BookingTime, snapshot.StartTime, snapshot.TargetDuration)
	if err != nil {
		return "", &FetchError{BookingID: event.BookingID, Err: err}
	}

	chain, err := engine.SelectStrategy(snapshot.Started(), snapshot.TargetDuration != "", snapshot.TargetEnergyKW != nil)
	if err != nil {
		return "", &StrategyError{BookingID: event.BookingID, Err: err}
	}

	status, err := s.executor.Evaluate(chain, snapshot, durations)
	if err != nil {
		if errors.Is(err, engine.ErrChainExhausted) {
			return "", &ChainExhaustionError{BookingID: event.BookingID, Err: err}
		}
		return "", err
	}

	record, err := s.mapper.Map(status, snapshot, durations)
	if err != nil {
		return "", err
	}

	if err := s.table.WriteRecord(ctx, record); err != nil {
		// Durability is best-effort; the decision stands.
		werr := &WriteError{BookingID: event.BookingID, Err: err}
		s.logger.Error("session update not persisted", zap.Error(werr))
	}

	s.broadcast(ctx, event, snapshot)

	s.metrics.Decisions.WithLabelValues(status.String()).Inc()
	s.logger.Info("session evaluated",
		zap.String("booking_id", event.BookingID),
		zap.String("vendor_id", event.VendorID),
		zap.String("status", status.String()))
	return status, nil
}

// EvaluateWithFallback is the outermost boundary: any fatal failure maps to
// the terminal fallback status so the caller never sees an unhandled fault.
func (s *StatusService) EvaluateWithFallback(ctx context.Context, event models.TriggerEvent) models.ChargingStatus {
	status, err := s.Evaluate(ctx, event)
	if err != nil {
		s.metrics.FatalErrors.WithLabelValues(errorKind(err)).Inc()
		s.logger.Error("evaluation aborted, returning fallback status",
			zap.String("booking_id", event.BookingID),
			zap.Error(err))
		return models.StatusTerminated
	}
	return status
}

// broadcast pushes the live projection to the client socket and caches it
// for replay. Both are best-effort.
func (s *StatusService) broadcast(ctx context.Context, event models.TriggerEvent, snapshot *models.SessionSnapshot) {
	payload, err := json.Marshal(snapshot.Live)
	if err != nil {
		s.logger.Error("live projection encode failed", zap.Error(err))
		return
	}

	if s.live != nil {
		if err := s.live.Save(ctx, event.BookingID, payload); err != nil {
			s.logger.Warn("live projection not cached",
				zap.String("booking_id", event.BookingID), zap.Error(err))
		}
	}

	if event.SocketConnectionID == "" {
		cerr := &ChannelError{ConnectionID: "", Err: errors.New("no connection id in trigger event")}
		s.metrics.LivePushes.WithLabelValues("no_connection").Inc()
		s.logger.Warn("live update not delivered", zap.Error(cerr))
		return
	}

	if err := s.notifier.Push(event.SocketConnectionID, payload); err != nil {
		cerr := &ChannelError{ConnectionID: event.SocketConnectionID, Err: err}
		s.metrics.LivePushes.WithLabelValues("failed").Inc()
		s.logger.Warn("live update not delivered", zap.Error(cerr))
		return
	}

	s.metrics.LivePushes.WithLabelValues("ok").Inc()
	s.logger.Debug("live update delivered",
		zap.String("connection_id", event.SocketConnectionID))
}

func errorKind(err error) string {
	var fetchErr *FetchError
	var strategyErr *StrategyError
	var chainErr *ChainExhaustionError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &strategyErr):
		return "strategy"
	case errors.As(err, &chainErr):
		return "chain_exhaustion"
	default:
		return "internal"
	}
}
