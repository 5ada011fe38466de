package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract representa un contrato de servicio recurrente (internet, TV, etc.)
// sobre el que se facturan los ciclos y se calcula la mora.
type Contract struct {
	ID          string
	CompanyID   string
	CustomerID  string
	BranchID    string
	Descripcion string          // ej: "Internet residencial 100 Mbps"
	MontoMensual decimal.Decimal
	DiaCorte    int    // día del mes en que se genera el cobro
	Status      string // active, suspended, cancelled
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
