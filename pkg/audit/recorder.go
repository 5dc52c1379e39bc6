package audit

import (
	"context"

	"go.uber.org/zap"
)

// Recorder hands events to a sink and never fails the caller. A nil Recorder
// discards everything.
type Recorder struct {
	sink Sink
	log  *zap.Logger
}

func NewRecorder(sink Sink, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{sink: sink, log: log}
}

func (r *Recorder) Record(ctx context.Context, event *Event) {
	if r == nil || r.sink == nil || event == nil {
		return
	}
	if err := r.sink.Write(ctx, event); err != nil {
		r.log.Warn("failed to record audit event",
			zap.String("event_type", string(event.Type)),
			zap.String("error", err.Error()))
	}
}

func (r *Recorder) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
