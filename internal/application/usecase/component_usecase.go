package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-componentes/internal/application/dto"
	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/domain"
	"github.com/jhoicas/Inventario-componentes/internal/domain/entity"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
)

// ComponentUseCase alta y consulta del catálogo de componentes.
// El stock no se toca aquí: solo a través del motor de inventario.
type ComponentUseCase struct {
	repo repository.ComponentRepository
}

// NewComponentUseCase construye el caso de uso.
func NewComponentUseCase(repo repository.ComponentRepository) *ComponentUseCase {
	return &ComponentUseCase{repo: repo}
}

// Create registra un componente. part_number duplicado -> domain.ErrDuplicate.
func (uc *ComponentUseCase) Create(ctx context.Context, in dto.CreateComponentRequest) (*dto.ComponentResponse, error) {
	partNumber := strings.TrimSpace(in.PartNumber)
	if partNumber == "" {
		return nil, fmt.Errorf("%w: part_number es requerido", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	c := &entity.Component{
		ID:           uuid.New().String(),
		PartNumber:   partNumber,
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	out := inventory.ToComponentResponse(c)
	return &out, nil
}

// GetByID obtiene un componente; (nil, nil) si no existe.
func (uc *ComponentUseCase) GetByID(ctx context.Context, id string) (*dto.ComponentResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	out := inventory.ToComponentResponse(c)
	return &out, nil
}

// List lista componentes con paginación.
func (uc *ComponentUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ComponentListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ComponentResponse, 0, len(list))
	for _, c := range list {
		items = append(items, inventory.ToComponentResponse(c))
	}
	return &dto.ComponentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
