package livepush

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 3 * time.Second

var (
	ErrNotConfigured = crerr.New("live push url is not configured")
	errPushTransient = crerr.New("live push transient failure")
)

type Config struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Notification tells the realtime gateway that clients watching an event
// should refetch its live state.
type Notification struct {
	EventID string    `json:"eventId"`
	Reason  string    `json:"reason"`
	At      time.Time `json:"at"`
}

type Client struct {
	http    *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("live push circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		http: &fasthttp.Client{
			Name:                "club-events-livepush",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

func (c *Client) Publish(ctx context.Context, notification Notification) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	var rejected error
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		sendErr := c.send(ctx, notification)
		if sendErr != nil && !IsTransient(sendErr) {
			rejected = sendErr
			return nil
		}
		return sendErr
	})
	switch {
	case crerr.Is(err, resilience.ErrCircuitOpen):
		return crerr.Wrap(err, "live push skipped")
	case err != nil:
		return err
	}
	return rejected
}

func (c *Client) send(ctx context.Context, notification Notification) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(notification); err != nil {
		return crerr.Wrapf(err, "encode live push event_id=%s", notification.EventID)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.SetBody(buf.B)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Wrapf(crerr.Mark(err, errPushTransient), "push live view event_id=%s", notification.EventID)
	}

	status := resp.StatusCode()
	if status >= fasthttp.StatusOK && status < fasthttp.StatusMultipleChoices {
		return nil
	}
	err := crerr.Newf("live push status=%d body=%s", status, abbreviate(resp.Body()))
	if status >= fasthttp.StatusInternalServerError || status == fasthttp.StatusTooManyRequests {
		return crerr.Mark(err, errPushTransient)
	}
	return err
}

// IsTransient reports whether a failed push may succeed on a later attempt.
func IsTransient(err error) bool {
	return crerr.Is(err, errPushTransient)
}

func abbreviate(body []byte) string {
	const max = 256
	text := strings.TrimSpace(string(body))
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
