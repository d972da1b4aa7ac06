package errors

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the envelope written for every failed request.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// NewHandler returns a fiber ErrorHandler that renders ApiError values and
// falls back to a generic 500 for anything it does not recognise.
func NewHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return HandleError(c, err, logger)
	}
}

func HandleError(c *fiber.Ctx, err error, logger *zap.Logger) error {
	if err == nil {
		return nil
	}

	var ae *ApiError
	if stderrors.As(err, &ae) {
		if ae.Err != nil {
			logger.Warn("request failed",
				zap.Int("status", ae.StatusCode),
				zap.String("path", c.Path()),
				zap.Error(ae.Err),
			)
		}
		errs := ae.Errors
		if errs == nil {
			errs = []string{}
		}
		return c.Status(ae.StatusCode).JSON(ErrorResponse{
			StatusCode: ae.StatusCode,
			Message:    ae.Message,
			Success:    false,
			Errors:     errs,
		})
	}

	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{
			StatusCode: fe.Code,
			Message:    fe.Message,
			Success:    false,
			Errors:     []string{},
		})
	}

	logger.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		StatusCode: fiber.StatusInternalServerError,
		Message:    "Internal Server Error",
		Success:    false,
		Errors:     []string{},
	})
}
