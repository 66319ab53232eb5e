package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// UpstreamCalls counts calls to external collaborators by target and outcome.
	UpstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntboard_upstream_calls_total",
		Help: "Total calls to external collaborators by target and outcome",
	}, []string{"target", "outcome"})

	// StatusTransitions counts recorded application status changes.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huntboard_status_transitions_total",
		Help: "Total application status transitions recorded, by destination status",
	}, []string{"status"})
)

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
