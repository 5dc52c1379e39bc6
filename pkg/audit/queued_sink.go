/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package audit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cloudops-dev/cloudops/pkg/metrics"
)

type QueuedSinkConfig struct {
	QueueSize    int
	WorkerCount  int
	WriteTimeout time.Duration
}

func DefaultQueuedSinkConfig() QueuedSinkConfig {
	return QueuedSinkConfig{
		QueueSize:    1000,
		WorkerCount:  2,
		WriteTimeout: 5 * time.Second,
	}
}

// QueuedSinkStats is a point-in-time view of a QueuedSink.
type QueuedSinkStats struct {
	Name            string `json:"name"`
	QueueLength     int    `json:"queueLength"`
	QueueCapacity   int    `json:"queueCapacity"`
	DroppedEvents   int64  `json:"droppedEvents"`
	ProcessedEvents int64  `json:"processedEvents"`
	FailedEvents    int64  `json:"failedEvents"`
}

// QueuedSink decouples request handling from a slow sink. Write never blocks:
// when the queue is full the event is dropped and counted.
type QueuedSink struct {
	sink   Sink
	queue  chan *Event
	config QueuedSinkConfig
	logger *zap.Logger

	droppedEvents   atomic.Int64
	processedEvents atomic.Int64
	failedEvents    atomic.Int64

	// mu guards closed against concurrent sends on a closing queue.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueuedSink(sink Sink, cfg QueuedSinkConfig, logger *zap.Logger) *QueuedSink {
	defaults := DefaultQueuedSinkConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaults.WorkerCount
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	qs := &QueuedSink{
		sink:   sink,
		queue:  make(chan *Event, cfg.QueueSize),
		config: cfg,
		logger: logger.Named("queued-sink").With(zap.String("sink", sink.Name())),
	}
	for i := 0; i < cfg.WorkerCount; i++ {
		qs.wg.Add(1)
		go qs.processQueue(i)
	}
	return qs
}

func (qs *QueuedSink) Write(_ context.Context, event *Event) error {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	if qs.closed {
		return fmt.Errorf("queued sink %s is closed", qs.sink.Name())
	}
	select {
	case qs.queue <- event:
	default:
		qs.droppedEvents.Add(1)
		metrics.AuditEventsDropped.WithLabelValues(qs.sink.Name(), "queue_full").Inc()
		qs.logger.Warn("audit queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
	}
	return nil
}

func (qs *QueuedSink) processQueue(workerID int) {
	defer qs.wg.Done()
	for event := range qs.queue {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), qs.config.WriteTimeout)
		err := qs.sink.Write(ctx, event)
		cancel()
		metrics.AuditSinkLatency.WithLabelValues(qs.sink.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			qs.failedEvents.Add(1)
			metrics.AuditEvents.WithLabelValues(qs.sink.Name(), "failed").Inc()
			qs.logger.Error("failed to write audit event",
				zap.Int("worker", workerID),
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.String("error", err.Error()))
			continue
		}
		qs.processedEvents.Add(1)
		metrics.AuditEvents.WithLabelValues(qs.sink.Name(), "written").Inc()
	}
}

func (qs *QueuedSink) Stats() QueuedSinkStats {
	return QueuedSinkStats{
		Name:            qs.sink.Name(),
		QueueLength:     len(qs.queue),
		QueueCapacity:   cap(qs.queue),
		DroppedEvents:   qs.droppedEvents.Load(),
		ProcessedEvents: qs.processedEvents.Load(),
		FailedEvents:    qs.failedEvents.Load(),
	}
}

// Close stops accepting events, drains the queue and closes the wrapped sink.
func (qs *QueuedSink) Close() error {
	qs.mu.Lock()
	if qs.closed {
		qs.mu.Unlock()
		return nil
	}
	qs.closed = true
	close(qs.queue)
	qs.mu.Unlock()

	qs.wg.Wait()
	stats := qs.Stats()
	qs.logger.Info("audit queue drained",
		zap.Int64("processed", stats.ProcessedEvents),
		zap.Int64("failed", stats.FailedEvents),
		zap.Int64("dropped", stats.DroppedEvents))
	return qs.sink.Close()
}

func (qs *QueuedSink) Name() string { return qs.sink.Name() }
