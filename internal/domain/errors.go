package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con contexto (fmt.Errorf("%w: ...")); comparar con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	// ErrConflict carrera de almacenamiento (creación simultánea de la misma fila).
	// El motor de stock lo reintenta; solo llega al caller si se agotan los intentos.
	ErrConflict = errors.New("conflicto con el estado actual")
)
