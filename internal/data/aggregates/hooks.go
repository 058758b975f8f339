package aggregates

import (
	"strings"
	"time"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

// Hooks receives the outcome of every workflow write.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
	log     *logger.Logger
	slow    time.Duration
}

// NewObservabilityHooks records write latency and outcome in metrics and logs
// lock contention. Writes slower than slow are logged as well; zero disables
// that.
func NewObservabilityHooks(metrics *observability.Metrics, log *logger.Logger, slow time.Duration) Hooks {
	if metrics == nil && log == nil {
		return noopHooks{}
	}
	if log != nil {
		log = log.With("component", "WorkflowWrites")
	}
	return &observabilityHooks{metrics: metrics, log: log, slow: slow}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	name = strings.TrimSpace(name)
	h.metrics.ObserveAggregateOperation(name, strings.TrimSpace(status), dur)
	if h.log != nil && h.slow > 0 && dur >= h.slow {
		h.log.Warn("slow workflow write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	}
}

// IncConflict fires on unique-index races such as two onboardings of one email.
func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
	if h.log != nil {
		h.log.Warn("workflow write conflicted", "op", name)
	}
}

// IncRetry fires on serialization failures, deadlocks, lock timeouts and
// cancelled requests.
func (h *observabilityHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
	if h.log != nil {
		h.log.Warn("workflow write interrupted", "op", name)
	}
}
