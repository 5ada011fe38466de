package entity

import "time"

// Company representa al emisor (contribuyente) del sistema. Los datos fiscales
// se copian como snapshot al DTE en el momento de la construcción.
type Company struct {
	ID              string
	Name            string // Razón social
	NombreComercial string
	NIT             string // NIT salvadoreño (14 o 9 dígitos)
	NRC             string // Número de registro de contribuyente
	CodActividad    string // CAT-019 actividad económica
	DescActividad   string
	Departamento    string // CAT-012
	Municipio       string // CAT-013
	Complemento     string // Dirección
	Telefono        string
	Email           string
	Status          string // active, suspended, inactive
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
