package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	domaindte "github.com/jhoicas/Facturacion-api/internal/domain/dte"
)

// mapDomainError traduce errores de dominio a respuestas HTTP.
// Los handlers de emisión e invalidación comparten esta tabla.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domaindte.ErrDocumentoInvalido), errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrBlockExhausted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BLOCK_EXHAUSTED", Message: err.Error()})
	case errors.Is(err, domain.ErrCreditNoteCapExceeded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CREDIT_NOTE_CAP", Message: err.Error()})
	case errors.Is(err, domain.ErrVoidWindowExpired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "VOID_WINDOW_EXPIRED", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
