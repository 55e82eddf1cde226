package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/internal/apierror"
)

// NewHTTPErrorHandler writes every handler error as a JSON ErrorResponse
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body, status := fromError(err)
		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
		} else {
			logger.Warn("Request rejected", fields...)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}

func fromError(err error) (*ErrorResponse, int) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return apierror.FromError(err)
	}

	if he.Internal != nil && errors.Is(he.Internal, context.DeadlineExceeded) {
		return apierror.FromError(he.Internal)
	}
	return &ErrorResponse{
		Code:    codeForStatus(he.Code),
		Message: fmt.Sprint(he.Message),
	}, he.Code
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return apierror.CodeInvalidRequest
	case http.StatusServiceUnavailable:
		return apierror.CodeProviderNotConfigured
	case http.StatusGatewayTimeout:
		return apierror.CodeTimeout
	}
	text := http.StatusText(status)
	if text == "" {
		return apierror.CodeInternal
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
