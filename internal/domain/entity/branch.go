package entity

import "time"

// Branch representa una sucursal o punto de venta del emisor. Los códigos
// codEstableMH y codPuntoVentaMH forman parte del número de control
// (DTE-{tipo}-{codEstable}{codPuntoVenta}-{correlativo}).
type Branch struct {
	ID              string
	CompanyID       string
	Name            string
	CodEstableMH    string // ej: "M001"
	CodPuntoVentaMH string // ej: "P001"
	TipoEstablec    string // CAT-009: 01 sucursal, 02 casa matriz, ...
	Departamento    string
	Municipio       string
	Complemento     string
	Telefono        string
	Email           string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
