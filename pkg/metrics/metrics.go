package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UsersRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "questionnaire", Name: "users_registered_total", Help: "Number of users appended to the aggregate."},
	)
	RatingsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "questionnaire", Name: "ratings_recorded_total", Help: "Number of ratings appended across all users."},
	)
	ImagesUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "questionnaire", Name: "images_uploaded_total", Help: "Number of questionnaire image replacements."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "questionnaire", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "questionnaire", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(UsersRegistered)
	reg.MustRegister(RatingsRecorded)
	reg.MustRegister(ImagesUploaded)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
