package evaluator

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// ProductionURL is the hosted evaluation API.
	ProductionURL = "https://ai-resume-job-matcher-backend.onrender.com"
	// LocalURL is where the API listens during development.
	LocalURL = "http://localhost:8000"

	userAgent      = "spigell/resume-matcher"
	defaultTimeout = 30 * time.Second

	evaluatePath  = "/evaluate/"
	templatesPath = "/evaluate/job-templates"
	uploadPath    = "/evaluate/upload"
	chatPath      = "/evaluate/chat"
	statusPath    = "/evaluate/status"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIURL    string
	Token     string
	UserAgent string
	Timeout   time.Duration
	// RateLimit is the number of requests allowed per minute. Zero disables throttling.
	RateLimit int
}

// Client talks to the remote evaluation API.
type Client struct {
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if apiURL == "" {
		apiURL = ProductionURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = userAgent
	}

	c := &Client{
		token:  strings.TrimSpace(opts.Token),
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger:    logger,
		UserAgent: ua,
	}

	if opts.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(opts.RateLimit)/60), opts.RateLimit)
	}

	return c
}

func (c *Client) url(path string) string {
	return c.APIURL + path
}
