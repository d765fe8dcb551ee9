package pathwise

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/pathwise/internal/db/redis"
	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/career"
	"github.com/kailas-cloud/pathwise/internal/domain/college"
	"github.com/kailas-cloud/pathwise/internal/domain/course"
	domrl "github.com/kailas-cloud/pathwise/internal/domain/ratelimit"
	"github.com/kailas-cloud/pathwise/internal/domain/search/result"
	budgetrepo "github.com/kailas-cloud/pathwise/internal/repository/budget"
	"github.com/kailas-cloud/pathwise/internal/repository/ratewindow"
	openaiCompl "github.com/kailas-cloud/pathwise/internal/transport/openai"
	completionuc "github.com/kailas-cloud/pathwise/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/pathwise/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/pathwise/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/pathwise/internal/usecase/search"
	usageuc "github.com/kailas-cloud/pathwise/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultSweepInterval    = time.Minute
	sdkProvider             = "sdk"
)

// searchUseCase is the internal interface for substitution in tests.
type searchUseCase interface {
	Careers(ctx context.Context, clientKey string, c career.Criteria) (result.Envelope[career.Career], error)
	Courses(ctx context.Context, clientKey string, c course.Criteria) (result.Envelope[course.Course], error)
	Colleges(ctx context.Context, clientKey string, c college.Criteria) (result.Envelope[college.College], error)
	CollegesBasic(ctx context.Context, clientKey string, c college.Criteria) (result.Envelope[college.College], error)
	CollegeURL(ctx context.Context, clientKey string, c college.URLCriteria) (string, error)
}

// Client is the pathwise SDK entry point. It is safe for concurrent use.
type Client struct {
	store     *dbRedis.Store
	search    searchUseCase
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
	stop      context.CancelFunc
}

// New creates a Client. With WithRedis it connects and waits for the store;
// the provided context bounds that readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		limit:  domrl.DefaultLimit,
		window: domrl.DefaultWindow,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.completer == nil && cfg.apiKey == "" {
		return nil, errors.New("pathwise: completion provider required (use WithOpenAI or WithCompleter)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store *dbRedis.Store
	if len(cfg.addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("pathwise: create redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("pathwise: database not ready: %w", err)
		}
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil && store != nil {
		store.Close()
	}
	return c, err
}

func wireClient(ctx context.Context, store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	log := zap.NewNop()
	policy := domrl.Policy{Limit: cfg.limit, Window: cfg.window}

	sweepCtx, stop := context.WithCancel(context.Background())
	var windows ratelimituc.WindowStore
	if store != nil {
		windows = ratewindow.NewRedisStore(store)
	} else {
		mem := ratewindow.NewMemoryStore()
		go sweep(sweepCtx, mem, policy)
		windows = mem
	}

	limiter, err := ratelimituc.New(windows, policy, log)
	if err != nil {
		stop()
		return nil, fmt.Errorf("pathwise: %w", err)
	}

	// Provider: custom completer or OpenAI (with transport metrics built-in)
	provider := sdkProvider
	var base Completer = cfg.completer
	if base == nil {
		provider = "openai"
		base = openaiCompl.NewCompleter(&openaiCompl.Config{
			APIKey:        cfg.apiKey,
			BaseURL:       cfg.baseURL,
			StandardModel: cfg.standardModel,
			LightModel:    cfg.lightModel,
			Timeout:       cfg.timeout,
			Provider:      provider,
			Logger:        log,
		})
	}

	// Pass nil interfaces, not typed nil pointers.
	var budgetChecker completionuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if cfg.dailyTokens > 0 || cfg.monthlyTokens > 0 {
		action := completionuc.BudgetActionWarn
		if cfg.rejectOver {
			action = completionuc.BudgetActionReject
		}
		budget := completionuc.NewBudgetTracker(provider, cfg.dailyTokens, cfg.monthlyTokens, action, log)
		if store != nil {
			budget.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
		}
		budgetChecker = budget
		budgetReader = budget
	}

	completer := completionuc.NewInstrumentedCompleter(base, provider, budgetChecker, log)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	var checker healthuc.CompletionChecker
	if hc, ok := base.(domain.HealthChecker); ok {
		checker = hc
	}

	return &Client{
		store:     store,
		search:    searchuc.New(limiter, completer, log),
		healthSvc: healthuc.New(pinger, checker),
		usageSvc:  usageuc.New(budgetReader),
		obs:       obs,
		stop:      stop,
	}, nil
}

// sweep evicts expired in-memory windows until ctx is done.
func sweep(ctx context.Context, mem *ratewindow.MemoryStore, policy domrl.Policy) {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			mem.Prune(policy, now)
		}
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.stop != nil {
		c.stop()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks shared store connectivity. Without WithRedis it always succeeds.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Careers suggests careers for a free-text query on behalf of clientKey.
func (c *Client) Careers(ctx context.Context, clientKey, query string) (res Result[Career], err error) {
	start := time.Now()
	defer func() { c.obs.observe("careers", start, err) }()

	env, err := c.search.Careers(ctx, clientKey, career.Criteria{Query: query})
	if err != nil {
		return Result[Career]{}, err
	}
	return fromEnvelope(env), nil
}

// Courses suggests online courses for a free-text query on behalf of clientKey.
func (c *Client) Courses(ctx context.Context, clientKey, query string) (res Result[Course], err error) {
	start := time.Now()
	defer func() { c.obs.observe("courses", start, err) }()

	env, err := c.search.Courses(ctx, clientKey, course.Criteria{Query: query})
	if err != nil {
		return Result[Course]{}, err
	}
	return fromEnvelope(env), nil
}

// Colleges suggests colleges with full criteria validation.
func (c *Client) Colleges(ctx context.Context, clientKey string, q CollegeQuery) (res Result[College], err error) {
	start := time.Now()
	defer func() { c.obs.observe("colleges", start, err) }()

	env, err := c.search.Colleges(ctx, clientKey, q)
	if err != nil {
		return Result[College]{}, err
	}
	return fromEnvelope(env), nil
}

// CollegesBasic is the lightweight college search. Result.Message echoes the criteria.
func (c *Client) CollegesBasic(ctx context.Context, clientKey string, q CollegeQuery) (res Result[College], err error) {
	start := time.Now()
	defer func() { c.obs.observe("colleges_basic", start, err) }()

	env, err := c.search.CollegesBasic(ctx, clientKey, q)
	if err != nil {
		return Result[College]{}, err
	}
	return fromEnvelope(env), nil
}

// CollegeURL looks up a college's official website.
// An unusable model reply is ErrInvalidValue.
func (c *Client) CollegeURL(ctx context.Context, clientKey, name, location string) (u string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("college_url", start, err) }()

	return c.search.CollegeURL(ctx, clientKey, college.URLCriteria{CollegeName: name, Location: location})
}
