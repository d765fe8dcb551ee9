package pathwise

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	apiKey        string
	baseURL       string
	standardModel string
	lightModel    string
	timeout       time.Duration
	completer     Completer

	addrs    []string
	password string

	limit  int
	window time.Duration

	dailyTokens   int64
	monthlyTokens int64
	rejectOver    bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI uses the OpenAI chat completion API with the given key.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
	})
}

// WithBaseURL points the OpenAI client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithModels overrides the model ids for the standard and light classes.
// Empty values keep the defaults.
func WithModels(standard, light string) Option {
	return optionFunc(func(c *clientConfig) {
		c.standardModel = standard
		c.lightModel = light
	})
}

// WithTimeout bounds each model call. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithCompleter replaces the OpenAI provider. It takes precedence over WithOpenAI.
func WithCompleter(comp Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = comp
	})
}

// WithRedis stores rate windows and token counters in Redis so that
// several processes share them.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRateLimit admits at most limit requests per client key per window.
// Default: 10 per minute.
func WithRateLimit(limit int, window time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.limit = limit
		c.window = window
	})
}

// WithTokenBudget caps daily and monthly token use (0 = unlimited).
// With reject set, calls over budget fail with ErrQuotaExceeded;
// otherwise the overrun is only logged.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
		c.rejectOver = reject
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
