package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued() {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure() {}

// IncBookCreated is a no-op.
func (n *NoopRecorder) IncBookCreated() {}

// IncBookUpdated is a no-op.
func (n *NoopRecorder) IncBookUpdated() {}

// IncBookDeleted is a no-op.
func (n *NoopRecorder) IncBookDeleted() {}
