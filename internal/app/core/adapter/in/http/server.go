package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
)

// NewApp 建立 fiber App 並掛上 middleware 與路由
//
// 參數:
//
//	handler: 交易 API handler
//	logger: 請求日誌使用的 logger
//
// 回傳:
//
//	*fiber.App: 可直接 Listen 或用 app.Test 測試
func NewApp(handler *Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "transactions",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(fiberrecover.New())
	app.Use(requestLogger(logger.With(zap.String("component", "http"))))
	handler.RegisterRoutes(app)
	return app
}

// errorHandler 處理 handler 沒有自行回應的錯誤 (如 404 路由、panic)
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := domain.ErrorCodeInternal
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = domain.ErrorCodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusUnprocessableEntity:
			code = domain.ErrorCodeBadRequest
		}
		return writeErrorResponse(c, fiberErr.Code, code, fiberErr.Message)
	}
	return writeErrorResponse(c, fiber.StatusInternalServerError, domain.ErrorCodeInternal,
		"Internal Server Error: "+err.Error())
}

// requestLogger 每個請求一筆日誌
func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("http request", fields...)
		} else {
			logger.Info("http request", fields...)
		}
		return err
	}
}
