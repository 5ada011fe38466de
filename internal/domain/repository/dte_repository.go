package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// DTEFilter filtra el listado de documentos.
type DTEFilter struct {
	BranchID   string
	ContractID string
	TipoDte    string
	Estado     string
	Limit      int
	Offset     int
}

// DTERepository define el puerto de persistencia para DTE y sus líneas.
// Los documentos nunca se borran; solo avanzan de estado vía Update.
type DTERepository interface {
	Create(ctx context.Context, doc *entity.DTE) error
	CreateItem(ctx context.Context, item *entity.DTEItem) error
	// Update persiste los campos de ciclo de vida: estado, payloads, sello,
	// código/descr. de mensaje, observaciones, intentos y último error.
	Update(ctx context.Context, doc *entity.DTE) error
	GetByID(ctx context.Context, id string) (*entity.DTE, error)
	GetByCodigoGeneracion(ctx context.Context, companyID, codigoGeneracion string) (*entity.DTE, error)
	GetItems(ctx context.Context, dteID string) ([]*entity.DTEItem, error)
	ListByCompany(ctx context.Context, companyID string, f DTEFilter) ([]*entity.DTE, error)
	// ListProcessedByContract devuelve los PROCESADOS de un contrato (mora).
	ListProcessedByContract(ctx context.Context, contractID string) ([]*entity.DTE, error)
	// SumProcessedCreditNotes suma TotalPagar de las notas de crédito
	// PROCESADAS emitidas contra el documento original (tope de NC).
	SumProcessedCreditNotes(ctx context.Context, originalID string) (decimal.Decimal, error)
}
