package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_runs_total",
			Help: "Pipeline runs by outcome",
		},
		[]string{"outcome"},
	)
	ReviewsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_extracted_total",
			Help: "Reviews that survived extraction filtering",
		},
	)
	ReviewsDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_discarded_total",
			Help: "Reviews dropped for being too short",
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(RunsTotal, ReviewsExtracted, ReviewsDiscarded)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
