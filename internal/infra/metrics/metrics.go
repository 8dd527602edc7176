package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicketDebits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticket_debits_total",
		Help: "Ticket debit attempts by consumption type and result.",
	}, []string{"type", "result"})

	EventApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_applications_total",
		Help: "Seminar/event application attempts by result.",
	}, []string{"result"})

	ConsultationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consultations_created_total",
		Help: "Successfully created consultation threads.",
	})
)
