package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store implementación en memoria del puerto de persistencia, pensada para
// tests y como backend intercambiable. Add/Update preparan operaciones que
// recién se aplican en Commit; las lecturas solo ven estado ya commiteado.
// Las entidades se copian al entrar y al salir: mutar lo devuelto no toca el
// almacén.
type Store struct {
	mu             sync.RWMutex
	attributeTypes map[string]*entity.AttributeType
	categories     map[string]*entity.Category
	products       map[string]*entity.Product
	staged         []func() error
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		attributeTypes: make(map[string]*entity.AttributeType),
		categories:     make(map[string]*entity.Category),
		products:       make(map[string]*entity.Product),
	}
}

// Commit aplica en orden las operaciones preparadas. Ante el primer error se
// descarta lo pendiente y se devuelve el error; lo ya aplicado en esta tanda
// queda (este backend no pretende el aislamiento de un motor transaccional).
func (s *Store) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.staged
	s.staged = nil
	for _, op := range staged {
		if err := op(); err != nil {
			return err
		}
	}
	return nil
}

// AttributeTypes devuelve la colección de tipos de atributo.
func (s *Store) AttributeTypes() repository.Set[*entity.AttributeType, repository.AttributeTypeFilter] {
	return &set[*entity.AttributeType, repository.AttributeTypeFilter]{
		store: s,
		items: s.attributeTypes,
		id:    func(t *entity.AttributeType) string { return t.ID },
		clone: cloneAttributeType,
		match: matchAttributeType,
	}
}

// Categories devuelve la colección de categorías.
func (s *Store) Categories() repository.Set[*entity.Category, repository.CategoryFilter] {
	return &set[*entity.Category, repository.CategoryFilter]{
		store: s,
		items: s.categories,
		id:    func(c *entity.Category) string { return c.ID },
		clone: cloneCategory,
		match: matchCategory,
	}
}

// Products devuelve la colección de productos.
func (s *Store) Products() repository.Set[*entity.Product, repository.ProductFilter] {
	return &set[*entity.Product, repository.ProductFilter]{
		store: s,
		items: s.products,
		id:    func(p *entity.Product) string { return p.ID },
		clone: cloneProduct,
		match: matchProduct,
	}
}

// set adapta un mapa de entidades al puerto genérico. Las operaciones de
// escritura capturan una copia de la entidad al momento de prepararse.
type set[T any, F any] struct {
	store *Store
	items map[string]T
	id    func(T) string
	clone func(T) T
	match func(T, F) bool
}

// Add prepara la inserción. En Commit falla con ErrDuplicate si el ID ya existe.
func (c *set[T, F]) Add(_ context.Context, item T) error {
	snapshot := c.clone(item)
	id := c.id(snapshot)
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.staged = append(c.store.staged, func() error {
		if _, ok := c.items[id]; ok {
			return fmt.Errorf("%w: id %s", domain.ErrDuplicate, id)
		}
		c.items[id] = snapshot
		return nil
	})
	return nil
}

// Update prepara el reemplazo. En Commit falla con ErrNotFound si el ID no existe.
func (c *set[T, F]) Update(_ context.Context, item T) error {
	snapshot := c.clone(item)
	id := c.id(snapshot)
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.staged = append(c.store.staged, func() error {
		if _, ok := c.items[id]; !ok {
			return fmt.Errorf("%w: id %s", domain.ErrNotFound, id)
		}
		c.items[id] = snapshot
		return nil
	})
	return nil
}

// FindOne devuelve la única entidad que cumple el filtro; con cero o más de
// una coincidencia devuelve (nil, nil), según el contrato del puerto.
func (c *set[T, F]) FindOne(_ context.Context, filter F) (T, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var found T
	count := 0
	for _, item := range c.items {
		if c.match(item, filter) {
			found = item
			count++
			if count > 1 {
				break
			}
		}
	}
	if count != 1 {
		var zero T
		return zero, nil
	}
	return c.clone(found), nil
}

// FindAll devuelve copias de todas las entidades que cumplen el filtro,
// ordenadas por ID para salida estable.
func (c *set[T, F]) FindAll(_ context.Context, filter F) ([]T, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	var result []T
	for _, item := range c.items {
		if c.match(item, filter) {
			result = append(result, c.clone(item))
		}
	}
	sort.Slice(result, func(i, j int) bool { return c.id(result[i]) < c.id(result[j]) })
	return result, nil
}

func matchAttributeType(t *entity.AttributeType, f repository.AttributeTypeFilter) bool {
	if f.ID != nil && t.ID != *f.ID {
		return false
	}
	if f.Name != nil && !strings.EqualFold(t.Name, *f.Name) {
		return false
	}
	return true
}

func matchCategory(c *entity.Category, f repository.CategoryFilter) bool {
	if f.ID != nil && c.ID != *f.ID {
		return false
	}
	if f.Name != nil && !strings.EqualFold(c.Name, *f.Name) {
		return false
	}
	if f.ParentID != nil && c.ParentID != *f.ParentID {
		return false
	}
	return true
}

func matchProduct(p *entity.Product, f repository.ProductFilter) bool {
	if f.ID != nil && p.ID != *f.ID {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.Match != nil && !f.Match(p) {
		return false
	}
	return true
}

func cloneAttributeType(t *entity.AttributeType) *entity.AttributeType {
	cp := *t
	return &cp
}

func cloneCategory(c *entity.Category) *entity.Category {
	cp := *c
	cp.Specification = append([]entity.SpecificationAttribute(nil), c.Specification...)
	return &cp
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	cp.Specifications = make([]entity.Specification, len(p.Specifications))
	for i, s := range p.Specifications {
		cp.Specifications[i] = entity.Specification{
			Attributes: append([]entity.Attribute(nil), s.Attributes...),
			CreatedAt:  s.CreatedAt,
		}
	}
	return &cp
}
