package rest

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// requestLogger logs one line per request through the verbose logger.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	})
}

// authenticate resolves an optional bearer token into the request context.
// Requests without a token pass through anonymously; a bad token is rejected.
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok || s.ports.Account == nil {
			return next(c)
		}

		req := c.Request()
		user, err := s.ports.Account.Authenticate(req.Context(), token)
		if err != nil {
			return err
		}
		c.SetRequest(req.WithContext(domain.ContextWithUser(req.Context(), user)))
		return next(c)
	}
}

// requireUser rejects anonymous requests.
func requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if domain.UserFromContext(c.Request().Context()) == nil {
			return domain.ErrAuthRequired
		}
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
