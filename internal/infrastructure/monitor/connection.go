package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

type probe struct {
	name    string
	check   Check
	timeout time.Duration
}

type Monitor struct {
	probes []probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Add registers a named dependency check. Call before Start.
func (m *Monitor) Add(name string, timeout time.Duration, check Check) {
	if check == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.probes = append(m.probes, probe{name: name, check: check, timeout: timeout})
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deps := make(map[string]bool, len(m.status.Dependencies))
	for k, v := range m.status.Dependencies {
		deps[k] = v
	}
	return Status{Dependencies: deps, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and stores the result.
func (m *Monitor) Refresh() {
	status := Status{
		Dependencies: make(map[string]bool, len(m.probes)),
		LastCheck:    time.Now(),
	}
	for _, p := range m.probes {
		status.Dependencies[p.name] = m.run(p)
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) run(p probe) bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.check(ctx); err != nil {
		m.logger.Warn("dependency check failed", zap.String("dependency", p.name), zap.Error(err))
		return false
	}
	return true
}
