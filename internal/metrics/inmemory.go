package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	TokensIssued    uint64
	AuthFailures    uint64
	BooksCreated    uint64
	BooksUpdated    uint64
	BooksDeleted    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	tokensIssued    uint64
	authFailures    uint64
	booksCreated    uint64
	booksUpdated    uint64
	booksDeleted    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		TokensIssued:    atomic.LoadUint64(&m.tokensIssued),
		AuthFailures:    atomic.LoadUint64(&m.authFailures),
		BooksCreated:    atomic.LoadUint64(&m.booksCreated),
		BooksUpdated:    atomic.LoadUint64(&m.booksUpdated),
		BooksDeleted:    atomic.LoadUint64(&m.booksDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncTokenIssued increments the issued-token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncAuthFailure increments the failed-authentication counter.
func (m *InMemoryRecorder) IncAuthFailure() {
	atomic.AddUint64(&m.authFailures, 1)
}

// IncBookCreated increments the book created counter.
func (m *InMemoryRecorder) IncBookCreated() {
	atomic.AddUint64(&m.booksCreated, 1)
}

// IncBookUpdated increments the book updated counter.
func (m *InMemoryRecorder) IncBookUpdated() {
	atomic.AddUint64(&m.booksUpdated, 1)
}

// IncBookDeleted increments the book deleted counter.
func (m *InMemoryRecorder) IncBookDeleted() {
	atomic.AddUint64(&m.booksDeleted, 1)
}
