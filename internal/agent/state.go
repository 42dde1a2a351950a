package agent

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stateMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ecfan_state",
		Name:      "state",
		Help:      "EC fan agent state (label values are ready, verify_failed, down)",
	}, []string{"state"})
)

type ecfanState struct {
	mutex sync.Mutex

	// ready indicates whether the agent owns an initialized EC
	ready     bool
	readyChan chan struct{}
	// verifyFailed indicates whether the last configuration write did not read back as written
	verifyFailed bool
}

func NewEcFanState() *ecfanState {
	return &ecfanState{
		readyChan: make(chan struct{}),
	}
}

func (s *ecfanState) RegisterEvent(event Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	switch event {
	case ReadyEvent:
		if !s.ready {
			s.ready = true
			close(s.readyChan)
		}
	case ShutdownEvent:
		if s.ready {
			s.ready = false
			s.readyChan = make(chan struct{})
		}
	case VerifyFailedEvent:
		s.verifyFailed = true
	case VerifyOkEvent:
		s.verifyFailed = false
	}

	setGauge := func(label string, active bool) {
		if active {
			stateMetric.WithLabelValues(label).Set(1)
		} else {
			stateMetric.WithLabelValues(label).Set(0)
		}
	}
	setGauge("ready", s.ready)
	setGauge("verify_failed", s.verifyFailed)
	setGauge("down", !s.ready)
}

func (s *ecfanState) Ready() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.ready
}

func (s *ecfanState) VerifyFailed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.verifyFailed
}

// WaitForReady blocks until the EC is initialized or the context is done
func (s *ecfanState) WaitForReady(ctx context.Context) error {
	s.mutex.Lock()
	ch := s.readyChan
	s.mutex.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
