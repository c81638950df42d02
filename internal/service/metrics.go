package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_total",
			Help: "Events handled by the ledger, by entry point",
		},
		[]string{"entry"},
	)
	parseFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_parse_failures_total",
			Help: "Free-text messages without a recognizable amount",
		},
	)
	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_records_total",
			Help: "Record writes, by result",
		},
		[]string{"result"},
	)
	flowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_flow_transitions_total",
			Help: "Dialogue inputs, by outcome",
		},
		[]string{"outcome"},
	)
	storageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_storage_errors_total",
			Help: "Failed storage calls, by operation",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(eventsTotal, parseFailures, recordsTotal, flowTransitions, storageErrors)
}
