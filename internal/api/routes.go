package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/apierror"
	"github.com/satriahrh/arunika/avatar/internal/websocket"
)

// Dependencies are the services the routes call into
type Dependencies struct {
	Chat websocket.ChatHandler
	// Hosted is nil when the hosted model is not configured
	Hosted      repositories.HostedModel
	Hub         *websocket.Hub
	FrontendURL string
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, StatusResponse{Message: "Server is running"})
	})

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, StatusResponse{
			Status:  "ok",
			Service: "avatar-server",
		})
	})

	e.GET("/avatar", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, deps.FrontendURL)
	})

	e.POST("/chat", func(c echo.Context) error {
		return chat(c, deps.Chat, logger)
	})

	e.POST("/generate", func(c echo.Context) error {
		return generate(c, deps.Hosted, logger)
	})

	if deps.Hub != nil {
		e.GET("/ws", func(c echo.Context) error {
			return websocket.HandleWebSocket(deps.Hub, c, logger.Named("ws"))
		})
	}
}

func chat(c echo.Context, handler websocket.ChatHandler, logger *zap.Logger) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind chat request", zap.Error(err))
		return &apierror.Error{Code: apierror.CodeInvalidRequest, Message: "Invalid request format"}
	}

	resp, err := handler.Handle(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func generate(c echo.Context, hosted repositories.HostedModel, logger *zap.Logger) error {
	if hosted == nil {
		return domain.ErrProviderNotConfigured
	}

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Failed to bind generate request", zap.Error(err))
		return &apierror.Error{Code: apierror.CodeInvalidRequest, Message: "Invalid request format"}
	}

	if strings.TrimSpace(req.Message) == "" {
		return &apierror.Error{Code: apierror.CodeInvalidRequest, Message: "message is required"}
	}

	text, err := hosted.Generate(c.Request().Context(), req.Prompt, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, GenerateResponse{Response: text})
}
