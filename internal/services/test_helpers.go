package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"trendpulse/pkg/contracts/domain"
)

// MockBroadcaster records broadcasts.
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

// stubLoader returns a fixed dataset, stamping each load with a fresh fingerprint.
type stubLoader struct {
	dataset *domain.Dataset
	err     error
	calls   atomic.Int32

	// gate, when set, blocks every Load until it is closed.
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (l *stubLoader) Load(ctx context.Context) (*domain.Dataset, error) {
	n := l.calls.Add(1)
	if l.started != nil {
		l.once.Do(func() { close(l.started) })
	}
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	ds := *l.dataset
	ds.Fingerprint = fmt.Sprintf("fp-%d", n)
	return &ds, nil
}
