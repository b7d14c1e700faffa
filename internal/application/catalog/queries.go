package catalog

import (
	"context"
	"strings"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// Consultas del catálogo: solo lectura, sin efectos secundarios.

// GetAttributeTypes devuelve todos los tipos de atributo.
func (m *Manager) GetAttributeTypes(ctx context.Context) ([]*entity.AttributeType, error) {
	return m.store.AttributeTypes().FindAll(ctx, repository.AttributeTypeFilter{})
}

// GetAttributeType obtiene un tipo de atributo por ID, o nil si no existe.
func (m *Manager) GetAttributeType(ctx context.Context, id string) (*entity.AttributeType, error) {
	return m.store.AttributeTypes().FindOne(ctx, repository.AttributeTypeFilter{ID: &id})
}

// GetAttributeTypeByName obtiene un tipo de atributo por nombre exacto
// (case-insensitive), o nil si no existe.
func (m *Manager) GetAttributeTypeByName(ctx context.Context, name string) (*entity.AttributeType, error) {
	return m.store.AttributeTypes().FindOne(ctx, repository.AttributeTypeFilter{Name: &name})
}

// GetProducts devuelve todos los productos del catálogo.
func (m *Manager) GetProducts(ctx context.Context) ([]*entity.Product, error) {
	return m.store.Products().FindAll(ctx, repository.ProductFilter{})
}

// FindProducts devuelve los productos que cumplen el filtro.
func (m *Manager) FindProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	return m.store.Products().FindAll(ctx, filter)
}

// GetProduct obtiene un producto por ID, o nil si no existe.
func (m *Manager) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return m.store.Products().FindOne(ctx, repository.ProductFilter{ID: &id})
}

// FindProduct obtiene el único producto que cumple el filtro, o nil si ninguno
// (o más de uno) lo cumple.
func (m *Manager) FindProduct(ctx context.Context, filter repository.ProductFilter) (*entity.Product, error) {
	return m.store.Products().FindOne(ctx, filter)
}

// GetCategories devuelve todas las categorías.
func (m *Manager) GetCategories(ctx context.Context) ([]*entity.Category, error) {
	return m.store.Categories().FindAll(ctx, repository.CategoryFilter{})
}

// GetChildCategories devuelve las categorías hijas directas de parentID.
func (m *Manager) GetChildCategories(ctx context.Context, parentID string) ([]*entity.Category, error) {
	return m.store.Categories().FindAll(ctx, repository.CategoryFilter{ParentID: &parentID})
}

// GetCategory obtiene una categoría por ID, o nil si no existe.
func (m *Manager) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	return m.store.Categories().FindOne(ctx, repository.CategoryFilter{ID: &id})
}

// GetCategoryByName obtiene una categoría por nombre exacto (case-insensitive),
// o nil si no existe.
func (m *Manager) GetCategoryByName(ctx context.Context, name string) (*entity.Category, error) {
	return m.store.Categories().FindOne(ctx, repository.CategoryFilter{Name: &name})
}

// GetAttributeValues devuelve los valores distintos (case-insensitive) que los
// productos de una categoría declaran para un tipo de atributo, en su
// especificación activa. Conserva la primera grafía vista de cada valor.
func (m *Manager) GetAttributeValues(ctx context.Context, categoryID, attributeTypeID string) ([]string, error) {
	products, err := m.store.Products().FindAll(ctx, repository.ProductFilter{CategoryID: &categoryID})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var values []string
	for _, p := range products {
		active := p.ActiveSpecification()
		if active == nil {
			continue
		}
		for _, attr := range active.Attributes {
			if attr.AttributeTypeID != attributeTypeID {
				continue
			}
			key := strings.ToLower(attr.Value)
			if !seen[key] {
				seen[key] = true
				values = append(values, attr.Value)
			}
		}
	}
	return values, nil
}

// GetRelatedProducts devuelve los productos cuya especificación activa contiene,
// para CADA atributo del filtro, un atributo del mismo tipo y valor
// (case-insensitive): la intersección de todos los filtros, no la unión.
// El orden de los atributos no altera el resultado; sin filtros devuelve todos
// los productos.
func (m *Manager) GetRelatedProducts(ctx context.Context, attrs ...entity.Attribute) ([]*entity.Product, error) {
	products, err := m.store.Products().FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return filterByAttributes(products, attrs), nil
}

// GetRelatedProductsByCategory es GetRelatedProducts restringido a una categoría.
func (m *Manager) GetRelatedProductsByCategory(ctx context.Context, categoryID string, attrs ...entity.Attribute) ([]*entity.Product, error) {
	products, err := m.store.Products().FindAll(ctx, repository.ProductFilter{CategoryID: &categoryID})
	if err != nil {
		return nil, err
	}
	return filterByAttributes(products, attrs), nil
}

// filterByAttributes estrecha el conjunto candidato una vez por cada atributo
// del filtro. La intersección es conmutativa: el orden no importa.
func filterByAttributes(products []*entity.Product, attrs []entity.Attribute) []*entity.Product {
	for _, a := range attrs {
		matched := products[:0:0]
		for _, p := range products {
			if p.HasAttribute(a) {
				matched = append(matched, p)
			}
		}
		products = matched
	}
	return products
}
