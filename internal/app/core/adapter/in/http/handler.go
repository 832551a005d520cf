package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-transactions-service/internal/app/core/domain"
	"github.com/JoeShih716/go-transactions-service/internal/app/core/usecase"
)

// Handler 是交易 API 的 HTTP adapter
type Handler struct {
	core   *usecase.TransactionUseCase
	logger *zap.Logger
}

func NewHandler(core *usecase.TransactionUseCase, logger *zap.Logger) *Handler {
	return &Handler{
		core:   core,
		logger: logger.With(zap.String("component", "http_handler")),
	}
}

// RegisterRoutes 註冊路由
// fiber 的 Get 會同時註冊 HEAD，HEAD /health 只回狀態碼
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.health)

	accounts := app.Group("/accounts/:account_id")
	accounts.Get("/transactions", h.getTransactions)
	accounts.Post("/transactions", h.createTransaction)
	accounts.Get("/balance", h.getBalance)
}

func (h *Handler) health(c *fiber.Ctx) error {
	if !h.core.CheckRemoteHealth(c.UserContext()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:         "UP",
			AccountService: "DOWN",
			Message:        "Account service not available",
		})
	}
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:         "UP",
		AccountService: "UP",
		Message:        "All services operational",
	})
}

func (h *Handler) getTransactions(c *fiber.Ctx) error {
	accountID, err := parseAccountID(c)
	if err != nil {
		return writeValidationError(c, err.Error())
	}

	ctx := c.UserContext()
	exists, err := h.core.AccountExists(ctx, accountID)
	if err != nil {
		return h.writeError(c, err)
	}
	if !exists {
		return writeErrorResponse(c, fiber.StatusNotFound, domain.ErrorCodeNotFound,
			fmt.Sprintf("Account %s Not Found", accountID))
	}

	history := h.core.GetTransactions(ctx, accountID)
	response := make([]TransactionResponse, 0, len(history))
	for _, tran := range history {
		response = append(response, newTransactionResponse(tran))
	}
	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *Handler) createTransaction(c *fiber.Ctx) error {
	accountID, err := parseAccountID(c)
	if err != nil {
		return writeValidationError(c, err.Error())
	}

	var req TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return writeValidationError(c, "invalid request body: "+err.Error())
	}
	if msg := req.Validate(); msg != "" {
		return writeValidationError(c, msg)
	}

	ctx := c.UserContext()
	exists, err := h.core.AccountExists(ctx, accountID)
	if err != nil {
		return h.writeError(c, err)
	}
	if !exists {
		return writeErrorResponse(c, fiber.StatusNotFound, domain.ErrorCodeNotFound,
			"Account Not Found: Account does not exist")
	}

	if !domain.HasValidScale(*req.Amount) {
		return writeErrorResponse(c, fiber.StatusBadRequest, domain.ErrorCodeBadRequest,
			"Bad Transaction: Amount must not have more than 2 decimal places")
	}

	tran, err := h.core.CreateTransaction(ctx, accountID, *req.Amount, *req.Description, req.TransactionType)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newTransactionResponse(tran))
}

func (h *Handler) getBalance(c *fiber.Ctx) error {
	accountID, err := parseAccountID(c)
	if err != nil {
		return writeValidationError(c, err.Error())
	}

	balance, found, err := h.core.GetBalance(c.UserContext(), accountID)
	if err != nil {
		return h.writeError(c, err)
	}
	if !found {
		return writeErrorResponse(c, fiber.StatusNotFound, domain.ErrorCodeNotFound,
			fmt.Sprintf("Account %s Not Found", accountID))
	}
	return c.Status(fiber.StatusOK).JSON(BalanceResponse{
		AccountID: accountID,
		Balance:   amountJSON(balance),
	})
}

// parseAccountID 帳戶 ID 必須為 UUID，回傳標準格式
func parseAccountID(c *fiber.Ctx) (string, error) {
	id, err := uuid.Parse(c.Params("account_id"))
	if err != nil {
		return "", errors.New("account_id must be a valid UUID")
	}
	return id.String(), nil
}

// writeError 依錯誤分類決定狀態碼
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	code := domain.ErrorCodeOf(err)
	status := statusOf(code)

	message := err.Error()
	var ledgerErr *domain.LedgerError
	if !errors.As(err, &ledgerErr) {
		message = "Internal Server Error: " + message
	}
	if code == domain.ErrorCodeInternal {
		h.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return writeErrorResponse(c, status, code, message)
}

func statusOf(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeNotFound:
		return fiber.StatusNotFound
	case domain.ErrorCodeInsufficientFunds, domain.ErrorCodeBadRequest:
		return fiber.StatusBadRequest
	case domain.ErrorCodeServiceUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeValidationError(c *fiber.Ctx, message string) error {
	return writeErrorResponse(c, fiber.StatusUnprocessableEntity, domain.ErrorCodeBadRequest, message)
}

func writeErrorResponse(c *fiber.Ctx, status int, code domain.ErrorCode, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		ErrorCode: code,
		Message:   message,
	})
}
