package alert

import (
	"context"
	"sync"
)

// MockNotifier records every alert it receives.
type MockNotifier struct {
	NotifyFunc func(ctx context.Context, alert *Alert)

	lock   sync.Mutex
	alerts []*Alert
}

func (m *MockNotifier) Notify(ctx context.Context, alert *Alert) {
	m.lock.Lock()
	m.alerts = append(m.alerts, alert)
	m.lock.Unlock()

	if m.NotifyFunc != nil {
		m.NotifyFunc(ctx, alert)
	}
}

func (m *MockNotifier) Alerts() []*Alert {
	m.lock.Lock()
	defer m.lock.Unlock()

	ret := make([]*Alert, len(m.alerts))
	copy(ret, m.alerts)

	return ret
}
