package entity

import "time"

// Component representa un componente electrónico (raíz del agregado).
// La cantidad total no se almacena: es la suma de sus ComponentLocation.
type Component struct {
	ID           string
	PartNumber   string // único
	Manufacturer string
	Description  string
	Category     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
