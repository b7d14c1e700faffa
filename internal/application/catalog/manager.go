package catalog

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// Manager orquesta las operaciones de lectura/escritura del catálogo.
// Es el único componente con reglas de negocio: unicidad de nombre de tipo de
// atributo y sintaxis del patrón de validación. Todo lo demás delega en el
// puerto de persistencia sin reintentos ni caché; las llamadas concurrentes
// son tan seguras como lo sea el Store subyacente.
type Manager struct {
	store repository.Store
}

// NewManager construye el manager con su puerto de persistencia, fijado en
// construcción (nunca estado global).
func NewManager(store repository.Store) *Manager {
	return &Manager{store: store}
}

// CreateCategory crea y persiste una categoría con su especificación.
// parentID vacío crea una categoría raíz. No verifica nombre duplicado:
// la asimetría con CreateAttributeType se conserva como decisión de producto.
func (m *Manager) CreateCategory(ctx context.Context, name, parentID string, spec []entity.SpecificationAttribute) (*entity.Category, error) {
	now := time.Now()
	category := &entity.Category{
		ID:            uuid.New().String(),
		Name:          name,
		ParentID:      parentID,
		Specification: spec,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.store.Categories().Add(ctx, category); err != nil {
		return nil, err
	}
	if err := m.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("crear categoría: %w", err)
	}
	return category, nil
}

// CreateProduct crea un producto con exactamente una especificación inicial.
func (m *Manager) CreateProduct(ctx context.Context, spec entity.Specification, categoryID string) (*entity.Product, error) {
	now := time.Now()
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = now
	}
	product := &entity.Product{
		ID:             uuid.New().String(),
		CategoryID:     categoryID,
		Specifications: []entity.Specification{spec},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.Products().Add(ctx, product); err != nil {
		return nil, err
	}
	if err := m.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	return product, nil
}

// UpdateProduct agrega una especificación nueva al historial del producto.
// Relee el producto por ID (no confía en la instancia del llamador); si el ID
// ya no resuelve devuelve ErrNotFound. El historial previo queda intacto:
// nunca se muta una especificación existente.
func (m *Manager) UpdateProduct(ctx context.Context, productID string, updated entity.Specification) (*entity.Product, error) {
	product, err := m.store.Products().FindOne(ctx, repository.ProductFilter{ID: &productID})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	now := time.Now()
	if updated.CreatedAt.IsZero() {
		updated.CreatedAt = now
	}
	product.AppendSpecification(updated)
	product.UpdatedAt = now
	if err := m.store.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	if err := m.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("actualizar producto: %w", err)
	}
	return product, nil
}

// CreateAttributeType crea un tipo de atributo. Dos precondiciones, verificadas
// antes de cualquier escritura (fail fast, sin estado parcial):
//  1. no existe otro tipo con el mismo nombre (case-insensitive);
//  2. validationPattern compila como expresión regular.
func (m *Manager) CreateAttributeType(ctx context.Context, name, displayName, validationPattern string) (*entity.AttributeType, error) {
	existing, err := m.store.AttributeTypes().FindOne(ctx, repository.AttributeTypeFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: ya existe un tipo de atributo con nombre %q", domain.ErrDuplicate, existing.Name)
	}
	if _, err := regexp.Compile(validationPattern); err != nil {
		return nil, fmt.Errorf("%w: patrón de validación %q del tipo %q: %w", domain.ErrInvalidInput, validationPattern, name, err)
	}
	now := time.Now()
	attrType := &entity.AttributeType{
		ID:                uuid.New().String(),
		Name:              name,
		DisplayName:       displayName,
		ValidationPattern: validationPattern,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := m.store.AttributeTypes().Add(ctx, attrType); err != nil {
		return nil, err
	}
	if err := m.store.Commit(ctx); err != nil {
		return nil, fmt.Errorf("crear tipo de atributo: %w", err)
	}
	return attrType, nil
}
