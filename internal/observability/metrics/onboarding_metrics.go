package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OnboardingOutcomeCompleted          = "completed"
	OnboardingOutcomeCompensated        = "compensated"
	OnboardingOutcomeCompensationFailed = "compensation_failed"
	OnboardingOutcomeRejected           = "rejected"

	CompensationResultSuccess = "success"
	CompensationResultFailed  = "failed"
)

// Config labels every onboarding series.
type Config struct {
	ServiceName string
	Environment string
}

// OnboardingMetrics tracks saga runs, step failures and compensations.
type OnboardingMetrics struct {
	runs          *prometheus.CounterVec
	stepFailures  *prometheus.CounterVec
	compensations *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	cleanupDebt   prometheus.Gauge
}

var (
	onboardingMetricsOnce sync.Once
	onboardingMetrics     *OnboardingMetrics
)

// Onboarding returns the singleton onboarding metrics registry.
func Onboarding() *OnboardingMetrics {
	return OnboardingWithConfig(Config{})
}

// OnboardingWithConfig returns the singleton registry, labelling it with cfg on first use.
func OnboardingWithConfig(cfg Config) *OnboardingMetrics {
	onboardingMetricsOnce.Do(func() {
		onboardingMetrics = newOnboardingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return onboardingMetrics
}

// ResetOnboardingMetricsForTest resets the singleton for tests.
func ResetOnboardingMetricsForTest() {
	if onboardingMetrics != nil {
		prometheus.DefaultRegisterer.Unregister(onboardingMetrics.runs)
		prometheus.DefaultRegisterer.Unregister(onboardingMetrics.stepFailures)
		prometheus.DefaultRegisterer.Unregister(onboardingMetrics.compensations)
		prometheus.DefaultRegisterer.Unregister(onboardingMetrics.stepDuration)
		prometheus.DefaultRegisterer.Unregister(onboardingMetrics.cleanupDebt)
	}
	onboardingMetricsOnce = sync.Once{}
	onboardingMetrics = nil
}

// NewOnboardingMetricsWithRegisterer builds an unshared instance, used with
// private registries.
func NewOnboardingMetricsWithRegisterer(registerer prometheus.Registerer, cfg Config) *OnboardingMetrics {
	return newOnboardingMetrics(registerer, cfg)
}

func newOnboardingMetrics(registerer prometheus.Registerer, cfg Config) *OnboardingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "tenantflow"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "tenantflow_onboarding_runs_total",
		Help:        "Tenant onboarding saga runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	stepFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "tenantflow_onboarding_step_failures_total",
		Help:        "Onboarding saga step failures by step.",
		ConstLabels: constLabels,
	}, []string{"step", "name"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "tenantflow_onboarding_compensations_total",
		Help:        "Onboarding compensation attempts by step and result.",
		ConstLabels: constLabels,
	}, []string{"step", "name", "result"})
	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "tenantflow_onboarding_step_duration_seconds",
		Help:        "Onboarding saga step latency.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"name"})
	cleanupDebt := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "tenantflow_onboarding_cleanup_pending",
		Help:        "Onboarding runs whose resources may need manual cleanup.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(runs, stepFailures, compensations, stepDuration, cleanupDebt)

	return &OnboardingMetrics{
		runs:          runs,
		stepFailures:  stepFailures,
		compensations: compensations,
		stepDuration:  stepDuration,
		cleanupDebt:   cleanupDebt,
	}
}

func (m *OnboardingMetrics) IncRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

func (m *OnboardingMetrics) IncStepFailure(step int, name string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(strconv.Itoa(step), name).Inc()
}

func (m *OnboardingMetrics) IncCompensation(step int, name string, err error) {
	if m == nil {
		return
	}
	result := CompensationResultSuccess
	if err != nil {
		result = CompensationResultFailed
	}
	m.compensations.WithLabelValues(strconv.Itoa(step), name, result).Inc()
}

func (m *OnboardingMetrics) ObserveStepDuration(name string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *OnboardingMetrics) SetCleanupPending(count int) {
	if m == nil {
		return
	}
	m.cleanupDebt.Set(float64(count))
}
