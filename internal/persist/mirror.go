package persist

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Saver is what the in-memory stores need to mirror a collection after a
// mutation. Save must not block on storage.
type Saver interface {
	Save(key string, v any)
}

// writeRecorder receives the outcome of every durable write.
type writeRecorder interface {
	PersistWrite(key string, err error)
}

// Mirror writes whole collections to a Gateway in the background. Writes for
// the same key run one at a time and only the most recent pending value is
// written, so an older snapshot can never land after a newer one.
type Mirror struct {
	gw       Gateway
	logger   *zap.Logger
	recorder writeRecorder
	ctx      context.Context

	mu     sync.Mutex
	queues map[string]*keyQueue
	wg     sync.WaitGroup
}

type keyQueue struct {
	pending    []byte
	hasPending bool
	running    bool
}

type MirrorOption func(*Mirror)

// WithRecorder reports write outcomes, typically to metrics.
func WithRecorder(r writeRecorder) MirrorOption {
	return func(m *Mirror) { m.recorder = r }
}

func NewMirror(gw Gateway, logger *zap.Logger, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		gw:     gw,
		logger: logger,
		ctx:    context.Background(),
		queues: make(map[string]*keyQueue),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save encodes v as JSON immediately and queues it for key.
func (m *Mirror) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.logger.Error("failed to encode collection", zap.String("key", key), zap.Error(err))
		m.record(key, err)
		return
	}
	m.SaveBytes(key, data)
}

// SaveBytes queues raw bytes for key.
func (m *Mirror) SaveBytes(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queues[key]
	if !ok {
		q = &keyQueue{}
		m.queues[key] = q
	}
	q.pending = data
	q.hasPending = true
	if q.running {
		return
	}
	q.running = true
	m.wg.Add(1)
	go m.drain(key, q)
}

func (m *Mirror) drain(key string, q *keyQueue) {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		if !q.hasPending {
			q.running = false
			m.mu.Unlock()
			return
		}
		data := q.pending
		q.pending = nil
		q.hasPending = false
		m.mu.Unlock()

		err := m.gw.Save(m.ctx, key, data)
		if err != nil {
			// In-memory state stays authoritative; the next mutation retries.
			m.logger.Warn("failed to persist collection", zap.String("key", key), zap.Error(err))
		} else {
			m.logger.Debug("persisted collection", zap.String("key", key), zap.Int("bytes", len(data)))
		}
		m.record(key, err)
	}
}

func (m *Mirror) record(key string, err error) {
	if m.recorder != nil {
		m.recorder.PersistWrite(key, err)
	}
}

// Flush blocks until every queued write has been attempted.
func (m *Mirror) Flush() {
	m.wg.Wait()
}
