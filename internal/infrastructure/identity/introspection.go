package identity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/club-events/internal/domain/user"
	"github.com/riskibarqy/club-events/internal/platform/cache"
	"github.com/riskibarqy/club-events/internal/platform/logging"
	"github.com/riskibarqy/club-events/internal/platform/resilience"
	"github.com/riskibarqy/club-events/internal/usecase"
)

var errIntrospectionTransient = errors.New("identity introspection transient failure")

type IntrospectionConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// IntrospectionClient resolves bearer tokens against the identity service.
// Active principals are cached by token hash for CacheTTL.
type IntrospectionClient struct {
	httpClient    *http.Client
	introspectURL string
	breaker       *resilience.CircuitBreaker
	principals    *cache.Store
	logger        *logging.Logger
}

func NewIntrospectionClient(cfg IntrospectionConfig) *IntrospectionClient {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 5 * time.Second
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("identity circuit breaker state changed", "from", from, "to", to)
	})

	var principals *cache.Store
	if cfg.CacheTTL > 0 {
		principals = cache.NewStore(cfg.CacheTTL)
	}

	return &IntrospectionClient{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		breaker:       breaker,
		principals:    principals,
		logger:        logger,
	}
}

func (c *IntrospectionClient) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}
	if c.principals == nil {
		return c.introspect(ctx, token)
	}

	return cache.Load(ctx, c.principals, "token:"+hashToken(token), func(ctx context.Context) (user.Principal, error) {
		return c.introspect(ctx, token)
	})
}

func (c *IntrospectionClient) introspect(ctx context.Context, token string) (user.Principal, error) {
	var (
		principal user.Principal
		denied    error
	)
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		principal, err = c.doIntrospect(ctx, token)
		if err != nil && !errors.Is(err, errIntrospectionTransient) {
			denied = err
			return nil
		}
		return err
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "identity circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: identity service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	case err != nil:
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	case denied != nil:
		return user.Principal{}, denied
	}
	return principal, nil
}

func (c *IntrospectionClient) doIntrospect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection: %v", errIntrospectionTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errIntrospectionTransient, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		c.logger.WarnContext(ctx, "identity introspection failed", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: introspection status %d", errIntrospectionTransient, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return user.Principal{}, fmt.Errorf("%w: introspection status %d", usecase.ErrUnauthorized, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("%w: decode introspect response: %v", errIntrospectionTransient, err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: introspection returned empty user_id", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
		Role:   normalizeRole(decoded.Role),
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func normalizeRole(raw string) user.Role {
	role := user.Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case user.RoleStaff, user.RoleCoreTeam, user.RoleAdmin:
		return role
	default:
		return user.RoleMember
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
