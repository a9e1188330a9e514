package ai

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/daemonXid/daemon-one/config"
)

// Facade selects and caches the process-wide provider client. Construction is
// lazy and happens at most once; the outcome (client or configuration error)
// is cached for the process lifetime because configuration never changes
// after boot.
//
// The façade never falls back to another provider, never retries, and never
// imposes its own deadline: failures surface to the caller as typed errors,
// and callers bound calls through context.
type Facade struct {
	cfg    config.AIConfig
	logger *zap.Logger

	once   sync.Once
	client Client
	err    error
}

// NewFacade creates a façade over the configured providers. No network
// activity and no credential check happen here; both are deferred to the
// first Client call.
func NewFacade(cfg config.AIConfig, logger *zap.Logger) *Facade {
	return &Facade{cfg: cfg, logger: logger}
}

// Client returns the active provider client, constructing it on first call.
// Unknown provider names and missing credentials yield a ConfigurationError,
// which is likewise cached: every subsequent call observes the same outcome.
func (f *Facade) Client() (Client, error) {
	f.once.Do(func() {
		f.client, f.err = f.build()
		if f.err != nil {
			f.logger.Error("ai provider initialization failed",
				zap.String("provider", f.cfg.ActiveProvider),
				zap.Error(f.err))
			return
		}
		f.logger.Info("ai provider initialized",
			zap.String("provider", f.client.Name()))
	})
	return f.client, f.err
}

// ActiveProvider returns the configured provider name without constructing
// the client.
func (f *Facade) ActiveProvider() string {
	return f.cfg.ActiveProvider
}

func (f *Facade) build() (Client, error) {
	settings, ok := f.cfg.Settings(f.cfg.ActiveProvider)
	if !ok {
		return nil, &ConfigurationError{
			Provider: f.cfg.ActiveProvider,
			Reason:   "unknown provider name",
		}
	}
	if settings.APIKey == "" {
		return nil, &ConfigurationError{
			Provider: f.cfg.ActiveProvider,
			Reason:   "missing API key",
		}
	}

	// Zero timeout leaves the client unbounded; callers own deadlines.
	httpClient := &http.Client{Timeout: f.cfg.Timeout}

	switch f.cfg.ActiveProvider {
	case config.ProviderHuggingFace:
		return newHuggingFaceClient(settings, httpClient), nil
	case config.ProviderDeepSeek:
		return newDeepSeekClient(settings, httpClient), nil
	case config.ProviderOpenRouter:
		return newOpenRouterClient(settings, httpClient), nil
	default:
		return nil, &ConfigurationError{
			Provider: f.cfg.ActiveProvider,
			Reason:   "unknown provider name",
		}
	}
}
