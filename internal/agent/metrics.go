package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uptime-induestries/ecfan-agent/pkg/fancurve"
)

var (
	// eventCounter counts the state events registered by the agent
	eventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan_agent",
		Name:      "events_count",
		Help:      "EC fan agent internal state events",
	}, []string{"type"})

	fanRPM = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ecfan_agent",
		Name:      "fan_rpm",
		Help:      "Fan speed in RPM as reported by the EC",
	}, []string{"fan"})

	fanPercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ecfan_agent",
		Name:      "fan_percent",
		Help:      "Fan speed in percent of the configured maximum RPM",
	}, []string{"fan"})

	currentPoint = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ecfan_agent",
		Name:      "current_point",
		Help:      "Breakpoint index the EC is currently operating in",
	})

	statusReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan_agent",
		Name:      "status_reads_total",
		Help:      "Status reads (label result is ok or failed)",
	}, []string{"result"})

	configWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan_agent",
		Name:      "config_writes_total",
		Help:      "Configuration writes (label result is verified, mismatch, warning or failed)",
	}, []string{"result"})
)

func exportStatus(st fancurve.Status) {
	fanRPM.WithLabelValues("1").Set(float64(st.Fan1RPM))
	fanRPM.WithLabelValues("2").Set(float64(st.Fan2RPM))
	fanPercent.WithLabelValues("1").Set(float64(st.Fan1Percent))
	fanPercent.WithLabelValues("2").Set(float64(st.Fan2Percent))
	currentPoint.Set(float64(st.CurrentPoint))
}
