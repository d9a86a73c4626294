package config

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// OnboardingPolicy tunes the tenant onboarding saga at runtime.
type OnboardingPolicy struct {
	StepTimeout         time.Duration
	CompensationTimeout time.Duration
	StaleRunAfter       time.Duration
}

func DefaultOnboardingPolicy() OnboardingPolicy {
	return OnboardingPolicy{
		StepTimeout:         15 * time.Second,
		CompensationTimeout: 30 * time.Second,
		StaleRunAfter:       15 * time.Minute,
	}
}

type OnboardingPolicyHolder struct {
	current atomic.Value // holds OnboardingPolicy
}

// NewStaticOnboardingPolicy returns a holder that never reloads.
func NewStaticOnboardingPolicy(policy OnboardingPolicy) *OnboardingPolicyHolder {
	holder := &OnboardingPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func NewOnboardingPolicyHolder(cfg Config, log *zap.Logger) (*OnboardingPolicyHolder, error) {
	v := viper.New()

	if cfg.OnboardingPolicyPath != "" {
		v.SetConfigFile(cfg.OnboardingPolicyPath)
	} else {
		v.SetConfigName("onboarding")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/tenantflow")
		v.AddConfigPath(".")
	}

	for key, env := range onboardingEnvKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	defaults := DefaultOnboardingPolicy()
	v.SetDefault("onboarding.stepTimeout", defaults.StepTimeout)
	v.SetDefault("onboarding.compensationTimeout", defaults.CompensationTimeout)
	v.SetDefault("onboarding.staleRunAfter", defaults.StaleRunAfter)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	policy, err := decodeOnboardingPolicy(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticOnboardingPolicy(policy)
	if !fileLoaded {
		return holder, nil
	}

	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.onboarding")

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeOnboardingPolicy(v)
		if err != nil {
			log.Warn("onboarding policy reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("onboarding policy reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *OnboardingPolicyHolder) Get() OnboardingPolicy {
	if h == nil {
		return DefaultOnboardingPolicy()
	}
	policy, ok := h.current.Load().(OnboardingPolicy)
	if !ok {
		return DefaultOnboardingPolicy()
	}
	return policy
}

var onboardingEnvKeys = map[string]string{
	"onboarding.stepTimeout":         "ONBOARDING_STEP_TIMEOUT",
	"onboarding.compensationTimeout": "ONBOARDING_COMPENSATION_TIMEOUT",
	"onboarding.staleRunAfter":       "ONBOARDING_STALE_RUN_AFTER",
}

func decodeOnboardingPolicy(v *viper.Viper) (OnboardingPolicy, error) {
	policy := OnboardingPolicy{
		StepTimeout:         v.GetDuration("onboarding.stepTimeout"),
		CompensationTimeout: v.GetDuration("onboarding.compensationTimeout"),
		StaleRunAfter:       v.GetDuration("onboarding.staleRunAfter"),
	}
	if err := validateOnboardingPolicy(policy); err != nil {
		return OnboardingPolicy{}, err
	}
	return policy, nil
}

func validateOnboardingPolicy(policy OnboardingPolicy) error {
	if policy.StepTimeout <= 0 {
		return errors.New("onboarding.stepTimeout must be positive")
	}
	if policy.CompensationTimeout <= 0 {
		return errors.New("onboarding.compensationTimeout must be positive")
	}
	if policy.StaleRunAfter <= 0 {
		return errors.New("onboarding.staleRunAfter must be positive")
	}
	return nil
}
