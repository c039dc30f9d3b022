package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "HTTP requests handled, by route and status code",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	taskMoves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_task_moves_total",
			Help: "Task updates that changed placement, by outcome",
		},
		[]string{"outcome"},
	)
	assistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_assistant_requests_total",
			Help: "Summarize and ask requests, by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests)
	prometheus.MustRegister(httpDuration)
	prometheus.MustRegister(taskMoves)
	prometheus.MustRegister(assistantRequests)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
