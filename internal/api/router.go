package api

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/3FinityAI/fogandleaf-sub000/internal/health"
)

// NewRouter собирает HTTP-маршруты сервиса.
func NewRouter(h *Handlers, checker *health.Checker, logger *log.Entry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
			return
		}
		h.PlaceOrder(w, r)
	})
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
			return
		}
		h.GetOrder(w, r)
	})
	mux.HandleFunc("/inventory/adjustments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
			return
		}
		h.AdjustStock(w, r)
	})
	mux.HandleFunc("/inventory/adjustments/bulk", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
			return
		}
		h.BulkAdjustStock(w, r)
	})
	mux.HandleFunc("/customers/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
			return
		}
		h.ListCustomerOrders(w, r)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeErrorMessage(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
			return
		}
		h.ListProductMovements(w, r)
	})

	if checker != nil {
		mux.HandleFunc("/health", checker.HandleHealth)
		mux.HandleFunc("/live", checker.HandleLive)
		mux.HandleFunc("/ready", checker.HandleReady)
	}

	return logRequests(mux, logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler, logger *log.Entry) http.Handler {
	if logger == nil {
		logger = log.New().WithField("component", "api")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}
