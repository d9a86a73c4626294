package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOnboardingMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOnboardingMetrics(registry, Config{ServiceName: "tenantflow", Environment: "test"})

	m.IncRun(OnboardingOutcomeCompensated)
	m.IncStepFailure(5, "create_subscription")
	m.IncCompensation(4, "create_customer", nil)
	m.IncCompensation(2, "create_lease", errors.New("db down"))
	m.ObserveStepDuration("create_tenant", 20*time.Millisecond)

	base := map[string]string{"service": "tenantflow", "env": "test"}

	if got := counterValue(t, registry, "tenantflow_onboarding_runs_total", with(base, "outcome", OnboardingOutcomeCompensated)); got != 1 {
		t.Fatalf("expected 1 compensated run, got %v", got)
	}
	stepLabels := with(with(base, "step", "5"), "name", "create_subscription")
	if got := counterValue(t, registry, "tenantflow_onboarding_step_failures_total", stepLabels); got != 1 {
		t.Fatalf("expected 1 step failure, got %v", got)
	}
	okLabels := with(with(with(base, "step", "4"), "name", "create_customer"), "result", CompensationResultSuccess)
	if got := counterValue(t, registry, "tenantflow_onboarding_compensations_total", okLabels); got != 1 {
		t.Fatalf("expected 1 successful compensation, got %v", got)
	}
	failedLabels := with(with(with(base, "step", "2"), "name", "create_lease"), "result", CompensationResultFailed)
	if got := counterValue(t, registry, "tenantflow_onboarding_compensations_total", failedLabels); got != 1 {
		t.Fatalf("expected 1 failed compensation, got %v", got)
	}
}

func TestNilOnboardingMetricsIsSafe(t *testing.T) {
	var m *OnboardingMetrics
	m.IncRun(OnboardingOutcomeCompleted)
	m.IncStepFailure(1, "create_tenant")
	m.IncCompensation(1, "create_tenant", nil)
	m.ObserveStepDuration("create_tenant", time.Second)
	m.SetCleanupPending(3)
}

func TestOnboardingCleanupGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOnboardingMetrics(registry, Config{ServiceName: "tenantflow", Environment: "test"})

	m.SetCleanupPending(4)
	m.SetCleanupPending(2)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "tenantflow_onboarding_cleanup_pending" {
			continue
		}
		if got := mf.Metric[0].GetGauge().GetValue(); got != 2 {
			t.Fatalf("expected gauge 2, got %v", got)
		}
		return
	}
	t.Fatal("cleanup gauge not registered")
}

func with(labels map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		out[k] = v
	}
	out[key] = value
	return out
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if !labelsMatch(metric, labels) {
				continue
			}
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.Label) != len(labels) {
		return false
	}
	for _, label := range metric.Label {
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
	}
	return true
}
