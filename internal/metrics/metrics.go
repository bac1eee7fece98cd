// Package metrics содержит счётчики Prometheus, отдаваемые на /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "episode_shop"

var (
	// Purchases события жизненного цикла покупок: created, conflict, approved, rejected
	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Purchase workflow events by type.",
	}, []string{"event"})

	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_tokens_issued_total",
		Help:      "Access tokens issued.",
	})

	// TokenValidations результаты проверки токенов: valid, invalid
	TokenValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_token_validations_total",
		Help:      "Access token validations by result.",
	}, []string{"result"})

	TokensPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_tokens_purged_total",
		Help:      "Expired access tokens removed by maintenance.",
	})

	DeliveryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_requests_total",
		Help:      "Delivery endpoint requests by route and status code.",
	}, []string{"route", "code"})

	// SessionsCompleted завершённые диалоги по типу
	SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_completed_total",
		Help:      "Completed conversation sessions by kind.",
	}, []string{"kind"})
)
