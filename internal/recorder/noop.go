package recorder

import "MarketConfluence/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ *Snapshot) error                { return nil }
func (n *NoopRecorder) RecordPositionEvent(_ *PositionEvent) error      { return nil }
func (n *NoopRecorder) LastSignal(_ string) (model.Signal, bool, error) { return "", false, nil }
func (n *NoopRecorder) Close() error                                    { return nil }
