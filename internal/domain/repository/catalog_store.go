package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// Set es el puerto genérico de persistencia para una colección de entidades (DIP).
// Add y Update solo preparan la escritura: nada toca el almacén hasta Store.Commit.
// FindOne devuelve la entidad cuando el filtro identifica exactamente una; con cero
// o más de una coincidencia devuelve (nil, nil) — el llamador decide qué hacer con
// la ausencia, el puerto nunca desambigua por él.
type Set[T any, F any] interface {
	Add(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	FindOne(ctx context.Context, filter F) (T, error)
	FindAll(ctx context.Context, filter F) ([]T, error)
}

// Store agrupa las colecciones del catálogo y el commit transaccional.
// Commit vuelca todas las escrituras preparadas como una unidad atómica.
type Store interface {
	AttributeTypes() Set[*entity.AttributeType, AttributeTypeFilter]
	Categories() Set[*entity.Category, CategoryFilter]
	Products() Set[*entity.Product, ProductFilter]
	Commit(ctx context.Context) error
}

// AttributeTypeFilter filtro tipado para tipos de atributo. Campos nil se ignoran.
type AttributeTypeFilter struct {
	ID   *string
	Name *string // comparación case-insensitive
}

// CategoryFilter filtro tipado para categorías. Campos nil se ignoran.
type CategoryFilter struct {
	ID       *string
	Name     *string // comparación case-insensitive
	ParentID *string // hijas directas de esa categoría
}

// ProductFilter filtro tipado para productos. Campos nil se ignoran.
// Match es un predicado arbitrario evaluado en memoria sobre los candidatos que
// ya pasaron los campos traducibles a consulta; permite consultas ad-hoc sin
// ensanchar el puerto.
type ProductFilter struct {
	ID         *string
	CategoryID *string
	Match      func(*entity.Product) bool
}
