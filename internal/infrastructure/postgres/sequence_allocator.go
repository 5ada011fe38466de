package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/domain/dte"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

var _ billing.SequenceAllocator = (*SequenceAllocator)(nil)

// SequenceAllocator asigna números de control bajo lock pesimista: abre una
// transacción, toma el bloque activo con SELECT ... FOR UPDATE y mantiene el
// lock hasta Consume (avanza el puntero y comitea) o Release (rollback, el
// número queda intacto). Dos emisiones concurrentes del mismo par
// (sucursal, tipo) se serializan en el lock de fila; la ventana está acotada
// por los timeouts de firma y transmisión.
type SequenceAllocator struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewSequenceAllocator construye el asignador sobre el pool.
func NewSequenceAllocator(pool *pgxpool.Pool) *SequenceAllocator {
	return &SequenceAllocator{pool: pool, now: time.Now}
}

// Reserve toma el lock del bloque activo y devuelve la reserva del siguiente
// número. El caller debe invocar exactamente uno de Consume/Release.
func (a *SequenceAllocator) Reserve(ctx context.Context, branch *entity.Branch, tipoDte string) (billing.NumberReservation, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reserva de numeración: %w", err)
	}

	block, err := NewSequenceBlockRepository(tx).GetActiveForUpdate(ctx, branch.ID, tipoDte)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	controlNumber, next, err := dte.NextControlNumber(block, branch)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	return &reservation{
		tx:            tx,
		block:         block,
		controlNumber: controlNumber,
		number:        next,
		now:           a.now,
	}, nil
}

// reservation mantiene la transacción (y el lock de fila) abierta hasta que
// el orquestador decide el destino del número.
type reservation struct {
	tx            pgx.Tx
	block         *entity.SequenceBlock
	controlNumber string
	number        int64
	now           func() time.Time
	done          bool
}

func (r *reservation) ControlNumber() string { return r.controlNumber }
func (r *reservation) Number() int64         { return r.number }

// Consume avanza el puntero del bloque al número reservado y comitea.
func (r *reservation) Consume(ctx context.Context) error {
	if r.done {
		return fmt.Errorf("reserva %s ya finalizada", r.controlNumber)
	}
	r.done = true
	r.block.Current = r.number
	r.block.UpdatedAt = r.now()
	if err := NewSequenceBlockRepository(r.tx).Update(ctx, r.block); err != nil {
		_ = r.tx.Rollback(ctx)
		return err
	}
	if err := r.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserva de numeración: %w", err)
	}
	return nil
}

// Release descarta la reserva sin avanzar el puntero.
func (r *reservation) Release(ctx context.Context) error {
	if r.done {
		return nil
	}
	r.done = true
	if err := r.tx.Rollback(ctx); err != nil {
		return fmt.Errorf("rollback reserva de numeración: %w", err)
	}
	return nil
}
