package recorder

// NoopRecorder is a no-op implementation used when history is disabled or
// the database cannot be opened.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAuth(_ *AuthEvent) error   { return nil }
func (n *NoopRecorder) RecordFetch(_ *FetchEvent) error { return nil }
func (n *NoopRecorder) RecordRun(_ *RunEvent) error     { return nil }
func (n *NoopRecorder) Close() error                    { return nil }
