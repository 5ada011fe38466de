package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrBlockExhausted: el bloque de numeración activo se agotó o no existe.
	// Se trata como error de validación (no se persiste ningún cambio).
	ErrBlockExhausted = errors.New("bloque de numeración agotado o inexistente")

	// ErrCreditNoteCapExceeded: la suma de notas de crédito superaría el total
	// del documento original (tolerancia de un centavo).
	ErrCreditNoteCapExceeded = errors.New("las notas de crédito exceden el total del documento original")

	// ErrVoidWindowExpired: venció el plazo legal para invalidar el DTE.
	ErrVoidWindowExpired = errors.New("plazo de invalidación vencido")
)
