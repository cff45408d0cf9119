package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	trainJobsRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mlserved_manager_train_jobs_running",
		Help: "Training jobs currently running.",
	})
	trainJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mlserved_manager_train_jobs_total",
		Help: "Finished training jobs by outcome.",
	}, []string{"outcome"})
	predictTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mlserved_manager_predict_total",
		Help: "Prediction calls by service and outcome.",
	}, []string{"service", "outcome"})
	predictRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mlserved_manager_predict_rejected_total",
		Help: "Predictions refused because an offline service was training.",
	}, []string{"service"})
	servicesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mlserved_manager_services",
		Help: "Services currently registered.",
	})
)

func init() {
	prometheus.MustRegister(trainJobsRunning, trainJobsTotal, predictTotal, predictRejected, servicesGauge)
}
