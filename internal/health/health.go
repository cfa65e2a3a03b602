package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status — статус компонента или сервиса целиком.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

const checkTimeout = 3 * time.Second

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — агрегированный ответ /health.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// CheckFunc проверяет один компонент. Контекст ограничен checkTimeout.
type CheckFunc func(ctx context.Context) error

// Critical-проверки валят readiness; остальные лишь деградируют /health.
type probe struct {
	fn       CheckFunc
	critical bool
}

// Checker держит реестр проверок и отдаёт health/live/ready эндпоинты.
type Checker struct {
	mu        sync.RWMutex
	probes    map[string]probe
	version   string
	startTime time.Time
}

// NewChecker создаёт реестр проверок.
func NewChecker(version string) *Checker {
	return &Checker{
		probes:    make(map[string]probe),
		version:   version,
		startTime: time.Now(),
	}
}

// Register добавляет критичную проверку (влияет на readiness).
func (c *Checker) Register(name string, fn CheckFunc) {
	c.register(name, fn, true)
}

// RegisterOptional добавляет некритичную проверку: её отказ помечает
// сервис как degraded, но не снимает его с балансировки.
func (c *Checker) RegisterOptional(name string, fn CheckFunc) {
	c.register(name, fn, false)
}

func (c *Checker) register(name string, fn CheckFunc, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe{fn: fn, critical: critical}
}

func (c *Checker) snapshot() map[string]probe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	probes := make(map[string]probe, len(c.probes))
	for name, p := range c.probes {
		probes[name] = p
	}
	return probes
}

func runProbe(ctx context.Context, name string, p probe) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := p.fn(ctx)
	duration := time.Since(start)

	check := Check{Name: name, Status: StatusHealthy, DurationMs: duration.Milliseconds()}
	if err != nil {
		check.Message = err.Error()
		if p.critical {
			check.Status = StatusUnhealthy
		} else {
			check.Status = StatusDegraded
		}
	}
	return check
}

// HandleHealth обрабатывает GET /health: прогоняет все проверки и
// агрегирует статус.
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]Check)
	overall := StatusHealthy

	for name, p := range c.snapshot() {
		check := runProbe(r.Context(), name, p)
		checks[name] = check

		switch check.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       c.version,
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	})
}

// HandleLive — liveness probe, всегда 200 пока процесс жив.
func (c *Checker) HandleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReady — readiness probe: 503, если падает любая критичная проверка.
func (c *Checker) HandleReady(w http.ResponseWriter, r *http.Request) {
	for name, p := range c.snapshot() {
		if !p.critical {
			continue
		}
		if check := runProbe(r.Context(), name, p); check.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready: " + name))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
