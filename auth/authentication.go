package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/medisys-health/diagnostics/config"
	"github.com/medisys-health/diagnostics/errors"
)

var (
	ErrUnauthenticated          = fmt.Errorf("%w: bearer token is missing or invalid", errors.Unauthenticated)
	AuthContextKey              = AuthKey("auth")
	AuthorizationHeaderKey      = "Authorization"
	BearerPrefix                = "Bearer "
	DefaultCacheSize            = 1000            // Cache up to 1000 tokens
	DefaultCacheEntryExpiration = 5 * time.Minute // Cache tokens for 5 minutes
)

type AuthKey string

type Auth struct {
	Claims Claims        `json:"claims"`
	Access AccessContext `json:"access"`
}

type Authenticator interface {
	Authenticate(token string) (*Auth, error)
}

type AuthMiddlewareOpts struct {
	Skipper middleware.Skipper
}

// NewAuthMiddleware resolves the access context of every request before it reaches
// the request validator
func NewAuthMiddleware(authenticator Authenticator, opts AuthMiddlewareOpts) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Allow skipping authentication for certain routes (e.g. readiness probe)
			if opts.Skipper != nil {
				if opts.Skipper(c) {
					return next(c)
				}
			}

			header := c.Request().Header.Get(AuthorizationHeaderKey)
			if !strings.HasPrefix(header, BearerPrefix) {
				return ErrUnauthenticated
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
			if token == "" {
				return ErrUnauthenticated
			}

			auth, err := authenticator.Authenticate(token)
			if err != nil {
				return err
			}

			SetAuthData(c, auth)
			return next(c)
		}
	}
}

// NewAuthenticator returns a token authenticator that caches resolved access contexts
func NewAuthenticator(cfg *config.Config, logger *zap.SugaredLogger) (Authenticator, error) {
	size := cfg.AuthCacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	return NewCachingAuthenticator(
		size,
		DefaultCacheEntryExpiration,
		NewTokenAuthenticator(logger),
	)
}

// TokenAuthenticator reads the claims of tokens that were already verified by the
// API gateway
type TokenAuthenticator struct {
	logger *zap.SugaredLogger
}

var _ Authenticator = &TokenAuthenticator{}

func NewTokenAuthenticator(logger *zap.SugaredLogger) *TokenAuthenticator {
	return &TokenAuthenticator{logger: logger}
}

func (t *TokenAuthenticator) Authenticate(token string) (*Auth, error) {
	raw := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, raw); err != nil {
		t.logger.Debugw("unable to parse bearer token", zap.Error(err))
		return nil, ErrUnauthenticated
	}

	claims, err := DecodeClaims(raw)
	if err != nil {
		t.logger.Debugw("unable to decode token claims", zap.Error(err))
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	access, err := Resolve(claims)
	if err != nil {
		t.logger.Infow("access denied", "sub", claims.Subject, "groups", claims.Groups, zap.Error(err))
		return nil, err
	}

	return &Auth{
		Claims: claims,
		Access: access,
	}, nil
}

func GetAuthData(ctx context.Context) *Auth {
	if auth, ok := ctx.Value(AuthContextKey).(*Auth); ok {
		return auth
	}

	return nil
}

func SetAuthData(ec echo.Context, auth *Auth) {
	ctx := WithAuthData(ec.Request().Context(), auth)
	ec.SetRequest(ec.Request().WithContext(ctx))
}

func WithAuthData(ctx context.Context, auth *Auth) context.Context {
	return context.WithValue(ctx, AuthContextKey, auth)
}

type CacheEntry struct {
	token  string
	auth   *Auth
	expiry time.Time
}

func (c CacheEntry) IsExpired() bool {
	return time.Now().After(c.expiry)
}

type CachingAuthenticator struct {
	delegate   Authenticator
	expiration time.Duration
	lru        *simplelru.LRU
	mu         *sync.Mutex
}

var _ Authenticator = &CachingAuthenticator{}

func NewCachingAuthenticator(size int, expiration time.Duration, delegate Authenticator) (*CachingAuthenticator, error) {
	var onEvict simplelru.EvictCallback
	lru, err := simplelru.NewLRU(size, onEvict)
	if err != nil {
		return nil, err
	}

	return &CachingAuthenticator{
		delegate:   delegate,
		expiration: expiration,
		lru:        lru,
		mu:         &sync.Mutex{},
	}, nil
}

// Authenticate only caches successful results, failures are re-evaluated every time
func (c *CachingAuthenticator) Authenticate(token string) (*Auth, error) {
	entry := c.getCachedEntry(token)
	if entry != nil {
		return entry.auth, nil
	}

	auth, err := c.delegate.Authenticate(token)
	if err != nil {
		return nil, err
	}

	c.setCacheEntry(CacheEntry{
		token:  token,
		auth:   auth,
		expiry: time.Now().Add(c.expiration),
	})

	return auth, nil
}

func (c *CachingAuthenticator) getCachedEntry(token string) *CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Get(token); ok {
		entry := e.(CacheEntry)
		if entry.IsExpired() {
			c.lru.Remove(token)
			return nil
		}
		return &entry
	}

	return nil
}

func (c *CachingAuthenticator) setCacheEntry(entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.lru.Add(entry.token, entry)
}
