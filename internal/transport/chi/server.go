package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/career"
	"github.com/kailas-cloud/pathwise/internal/domain/college"
	"github.com/kailas-cloud/pathwise/internal/domain/course"
	"github.com/kailas-cloud/pathwise/internal/domain/search/result"
	domusage "github.com/kailas-cloud/pathwise/internal/domain/usage"
	"github.com/kailas-cloud/pathwise/internal/logger"
	healthuc "github.com/kailas-cloud/pathwise/internal/usecase/health"
	searchuc "github.com/kailas-cloud/pathwise/internal/usecase/search"
	usageuc "github.com/kailas-cloud/pathwise/internal/usecase/usage"
)

// MaxBodyBytes limits request bodies.
const MaxBodyBytes = 64 << 10

// Route paths.
const (
	PathCareerSearch  = "/api/career-search"
	PathCourseSearch  = "/api/course-search"
	PathCollegeSearch = "/api/chatgpt-college-search"
	PathCollegesBasic = "/api/search-colleges"
	PathCollegeURL    = "/api/get-college-url"
	PathHealth        = "/health"
	PathUsage         = "/usage"
	PathMetrics       = "/metrics"
)

// HeaderCompletionTokens carries the tokens a request consumed.
const HeaderCompletionTokens = "X-Completion-Tokens"

const unknownClientKey = "unknown"

// Client-facing messages. Internals never reach the response body.
const (
	msgInvalidBody   = "Invalid request body"
	msgRateLimited   = "Rate limit exceeded. Please try again later."
	msgQuotaExceeded = "Search is temporarily unavailable. Please try again later."
	msgInvalidURL    = "Invalid URL received from API"

	msgCareerFailed   = "Failed to fetch career information"
	msgCourseFailed   = "Failed to fetch course information"
	msgCollegeFailed  = "Failed to fetch college recommendations"
	msgBasicFailed    = "Failed to search colleges"
	msgCollegeURLFail = "Failed to fetch college URL"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API on a chi router.
type Server struct {
	search        *searchuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		rateLimitHandler,
		fixedHandler(domain.ErrQuotaExceeded, http.StatusServiceUnavailable, msgQuotaExceeded),
		fixedHandler(domain.ErrInvalidValue, http.StatusUnprocessableEntity, msgInvalidURL),
		sentinelHandler(domain.ErrConfiguration, http.StatusInternalServerError),
		sentinelHandler(domain.ErrUpstream, http.StatusInternalServerError),
		sentinelHandler(domain.ErrMalformedReply, http.StatusInternalServerError),
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Post(PathCareerSearch, s.CareerSearch)
	r.Post(PathCourseSearch, s.CourseSearch)
	r.Post(PathCollegeSearch, s.CollegeSearch)
	r.Post(PathCollegesBasic, s.CollegesBasic)
	r.Post(PathCollegeURL, s.CollegeURL)
	r.Get(PathHealth, s.HealthCheck)
	r.Get(PathUsage, s.GetUsage)
	r.Get(PathMetrics, s.Metrics)
}

type careersResponse struct {
	Careers     []career.Career `json:"careers"`
	Suggestions string          `json:"suggestions,omitempty"`
}

type coursesResponse struct {
	Courses     []course.Course `json:"courses"`
	Suggestions string          `json:"suggestions,omitempty"`
}

type collegesResponse struct {
	Colleges    []college.College `json:"colleges"`
	Suggestions string            `json:"suggestions,omitempty"`
	Message     string            `json:"message,omitempty"`
}

type collegeURLResponse struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type usageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt *time.Time   `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time   `json:"period_end_at,omitempty"`
	Usage         usageMetrics `json:"usage"`
	Budget        budgetStatus `json:"budget"`
}

type usageMetrics struct {
	Requests int64 `json:"requests"`
	Tokens   int64 `json:"tokens"`
}

type budgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// CareerSearch handles POST /api/career-search.
func (s *Server) CareerSearch(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, msgCareerFailed, s.search.Careers,
		func(env result.Envelope[career.Career]) any {
			return careersResponse{Careers: env.Items(), Suggestions: env.Suggestions()}
		})
}

// CourseSearch handles POST /api/course-search.
func (s *Server) CourseSearch(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, msgCourseFailed, s.search.Courses,
		func(env result.Envelope[course.Course]) any {
			return coursesResponse{Courses: env.Items(), Suggestions: env.Suggestions()}
		})
}

// CollegeSearch handles POST /api/chatgpt-college-search.
func (s *Server) CollegeSearch(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, msgCollegeFailed, s.search.Colleges,
		func(env result.Envelope[college.College]) any {
			return collegesResponse{Colleges: env.Items(), Suggestions: env.Suggestions()}
		})
}

// CollegesBasic handles POST /api/search-colleges.
func (s *Server) CollegesBasic(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, msgBasicFailed, s.search.CollegesBasic,
		func(env result.Envelope[college.College]) any {
			return collegesResponse{
				Colleges:    env.Items(),
				Suggestions: env.Suggestions(),
				Message:     env.Message(),
			}
		})
}

// CollegeURL handles POST /api/get-college-url.
func (s *Server) CollegeURL(w http.ResponseWriter, r *http.Request) {
	serve(s, w, r, msgCollegeURLFail, s.search.CollegeURL,
		func(u string) any {
			return collegeURLResponse{URL: u}
		})
}

// serve decodes criteria C, runs op and renders its result R. Every request,
// decodable or not, passes the limiter before anything else is reported.
func serve[C, R any](
	s *Server,
	w http.ResponseWriter,
	r *http.Request,
	failMsg string,
	op func(ctx context.Context, clientKey string, c C) (R, error),
	render func(R) any,
) {
	key := clientKey(r)

	var criteria C
	if err := decodeBody(w, r, &criteria); err != nil {
		// A bad body is still charged against the client's window.
		if err := s.search.Admit(r.Context(), key); err != nil {
			s.handleDomainError(w, r, err, failMsg)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidBody, "")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := op(ctx, key, criteria)
	setCompletionHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err, failMsg)
		return
	}
	writeJSON(w, http.StatusOK, render(res))
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err, "invalid period")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := usageResponse{
		Period: string(report.Period()),
		Usage: usageMetrics{
			Requests: report.Requests(),
			Tokens:   report.Tokens(),
		},
		Budget: budgetStatus{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if report.PeriodStart() > 0 {
		start := time.UnixMilli(report.PeriodStart()).UTC()
		end := time.UnixMilli(report.PeriodEnd()).UTC()
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}

	if report.Budget().TokensLimit() > 0 && report.Budget().ResetsAt() > 0 {
		resetsAt := time.UnixMilli(report.Budget().ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody reads a JSON object into v, bounded by MaxBodyBytes.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// clientKey identifies the caller by network address. chi's RealIP middleware
// has already replaced RemoteAddr with the forwarded address when present.
func clientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return unknownClientKey
	}
	return addr
}

func setCompletionHeaders(w http.ResponseWriter, usage *domain.CompletionUsage) {
	if usage != nil && usage.Used {
		w.Header().Set(HeaderCompletionTokens, strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrConfiguration,
		domain.ErrEmptyReply,
		domain.ErrUpstream,
		domain.ErrMalformedReply,
		domain.ErrInvalidValue,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// validationHandler reports the failed rule as the error message.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	writeError(w, http.StatusBadRequest, ve.Reason, "")
	return true
}

// rateLimitHandler handles ErrRateLimited with a Retry-After header in whole seconds.
func rateLimitHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrRateLimited) {
		return false
	}
	var rle *domain.RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		secs := int(math.Ceil(rle.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeError(w, http.StatusTooManyRequests, msgRateLimited, "")
	return true
}

// fixedHandler answers a sentinel with a fixed message, ignoring the endpoint message.
func fixedHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message, "")
		return true
	}
}

// sentinelHandler answers a sentinel with the endpoint message and the sentinel as details.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg, "")
}
