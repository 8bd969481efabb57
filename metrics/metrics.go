package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webmail",
		Subsystem: "accounts",
		Name:      "created_total",
		Help:      "Number of email accounts created.",
	})

	Logins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webmail",
		Subsystem: "accounts",
		Name:      "logins_total",
		Help:      "Number of successful logins.",
	})

	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webmail",
		Subsystem: "mailbox",
		Name:      "emails_sent_total",
		Help:      "Number of send operations accepted.",
	})

	CopiesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webmail",
		Subsystem: "mailbox",
		Name:      "copies_delivered_total",
		Help:      "Number of inbox copies written during send fan-out.",
	})

	RecipientsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "webmail",
		Subsystem: "mailbox",
		Name:      "recipients_dropped_total",
		Help:      "Number of recipients silently dropped because no local account exists.",
	})
)
