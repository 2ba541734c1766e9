package dedup

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var flaggedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fibua_duplicates_flagged_total",
	Help: "Detection runs that recommended something other than allow.",
}, []string{"record_type", "action"})

// RecordVerdict counts non-allow verdicts per record type.
func RecordVerdict(recordType string, action Action) {
	if action == ActionAllow {
		return
	}
	flaggedTotal.WithLabelValues(recordType, strings.ToLower(string(action))).Inc()
}
