package server

import (
	"github.com/labstack/echo/v4"
	"go.ntppool.org/common/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"go.ntppool.org/imagerotate/server/ulid"
)

// requestLogger gives each request an id and a logger carrying it, so
// code further down can use logger.FromContext.
func (srv *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if len(id) == 0 {
				id = ulid.RequestID()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			ctx := req.Context()
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("request_id", id))

			log := srv.log.With("request_id", id)
			c.SetRequest(req.WithContext(logger.NewContext(ctx, log)))

			return next(c)
		}
	}
}
