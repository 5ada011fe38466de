package entity

import "time"

// SequenceBlock representa un rango de numeración autorizado para un par
// (sucursal, tipo de DTE). Current es el último número emitido; arranca en
// Lower-1 y el bloque se agota cuando Current == Upper. Current solo se
// incrementa, una vez por intento de transmisión (exitoso o rechazado), y
// nunca se decrementa.
type SequenceBlock struct {
	ID          string
	CompanyID   string
	BranchID    string
	TipoDte     string
	SeriePrefix string // prefijo del número de control, normalmente "DTE"
	Lower       int64
	Upper       int64
	Current     int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Exhausted indica si el bloque no puede producir más números.
func (b *SequenceBlock) Exhausted() bool {
	return b.Current >= b.Upper
}
