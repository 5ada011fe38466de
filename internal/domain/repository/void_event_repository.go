package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// VoidEventRepository define el puerto de persistencia de eventos de invalidación.
type VoidEventRepository interface {
	Create(ctx context.Context, ev *entity.VoidEvent) error
	Update(ctx context.Context, ev *entity.VoidEvent) error
	GetByID(ctx context.Context, id string) (*entity.VoidEvent, error)
	// GetProcessedByDTE devuelve el evento PROCESADO del documento, o nil.
	// Un DTE admite a lo sumo uno.
	GetProcessedByDTE(ctx context.Context, dteID string) (*entity.VoidEvent, error)
	ListByDTE(ctx context.Context, dteID string) ([]*entity.VoidEvent, error)
}
