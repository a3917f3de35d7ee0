package dto

import "time"

// CreateComponentRequest entrada para crear un componente.
type CreateComponentRequest struct {
	PartNumber   string `json:"part_number" validate:"required,min=1,max=100"`
	Manufacturer string `json:"manufacturer" validate:"max=200"`
	Description  string `json:"description" validate:"max=1000"`
	Category     string `json:"category" validate:"max=100"`
}

// ComponentResponse salida de un componente.
type ComponentResponse struct {
	ID           string    `json:"id"`
	PartNumber   string    `json:"part_number"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ComponentListResponse lista paginada de componentes.
type ComponentListResponse struct {
	Items []ComponentResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
