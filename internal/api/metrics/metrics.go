// Package metrics defines the custom Prometheus metrics of the tender API. It
// is the single source of truth for metric names, labels, and help strings.
//
// Call Register once per registry before serving traffic. HTTP request metrics
// come from echoprometheus and are not declared here.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tenders"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" (bad credentials) or "error"
var LoginAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TenderMutationsTotal counts successful tender writes.
// Label:
//   - op: "create", "update" or "delete"
var TenderMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tender_mutations_total",
		Help:      "Total number of tender writes, by operation.",
	},
	[]string{"op"},
)

// UserMutationsTotal counts successful account writes made by admins.
// Label:
//   - op: "create", "update" or "delete"
var UserMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user account writes, by operation.",
	},
	[]string{"op"},
)

// TenderExportsTotal counts generated spreadsheet exports.
var TenderExportsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tender_exports_total",
		Help:      "Total number of tender exports generated.",
	},
)

// Register adds every collector to reg. Collectors already present are
// skipped, so the same registry may be passed more than once.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		LoginAttemptsTotal,
		TenderMutationsTotal,
		UserMutationsTotal,
		TenderExportsTotal,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
