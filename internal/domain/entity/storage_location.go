package entity

import "time"

// StorageLocation representa un lugar físico de almacenamiento (gaveta, estante, caja).
type StorageLocation struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
