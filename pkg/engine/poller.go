package engine

import (
	"sync"
	"time"

	"github.com/sentrywaf/engine/pkg/metrics"
	"github.com/sentrywaf/engine/pkg/types"
)

// MetricsPoller periodically samples engine-wide gauges that aren't
// naturally driven by a single transaction event, such as the count
// of in-flight transactions sitting at each block mode.
type MetricsPoller struct {
	mu      sync.Mutex
	active  map[string]int
	stopCh  chan struct{}
	started bool
}

// NewMetricsPoller returns a stopped poller.
func NewMetricsPoller() *MetricsPoller {
	return &MetricsPoller{
		active: make(map[string]int),
		stopCh: make(chan struct{}),
	}
}

// Start begins sampling active block-mode counts every 15 seconds
// until Stop is called.
func (p *MetricsPoller) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	ticker := time.NewTicker(15 * time.Second)
	go func() {
		p.collect()
		for {
			select {
			case <-ticker.C:
				p.collect()
			case <-p.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts sampling.
func (p *MetricsPoller) Stop() {
	close(p.stopCh)
}

// TransactionOpened records that a transaction is now active at mode.
func (p *MetricsPoller) TransactionOpened(mode types.BlockMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active[mode.String()]++
}

// TransactionClosed records that a transaction previously active at
// mode has finished.
func (p *MetricsPoller) TransactionClosed(mode types.BlockMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active[mode.String()] > 0 {
		p.active[mode.String()]--
	}
}

func (p *MetricsPoller) collect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for mode, count := range p.active {
		metrics.BlockModeGauge.WithLabelValues(mode).Set(float64(count))
	}
}
