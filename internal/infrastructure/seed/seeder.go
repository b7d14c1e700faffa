package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// Step una acción de seed con nombre. Cada paso es idempotente (busca antes de
// insertar): correr el seeder dos veces deja el catálogo igual.
type Step struct {
	Name string
	Run  func(ctx context.Context, store repository.Store) error
}

// Seeder ejecuta los pasos de seed en orden contra el puerto de persistencia.
type Seeder struct {
	store repository.Store
	log   *logger.Logger
}

// New construye el seeder.
func New(store repository.Store, log *logger.Logger) *Seeder {
	return &Seeder{store: store, log: log}
}

// Run ejecuta todos los pasos en orden. Se detiene en el primer error.
func (s *Seeder) Run(ctx context.Context) error {
	for _, step := range Steps() {
		s.log.Info().Str("step", step.Name).Msg("ejecutando seed")
		if err := step.Run(ctx, s.store); err != nil {
			return fmt.Errorf("seed %s: %w", step.Name, err)
		}
	}
	return nil
}

// defaultAttributeTypes tipos de atributo base del catálogo.
var defaultAttributeTypes = []entity.AttributeType{
	{Name: "Name", DisplayName: "Name", ValidationPattern: `^.+$`},
	{Name: "Description", DisplayName: "Description", ValidationPattern: `^.*$`},
	{Name: "Price", DisplayName: "Price", ValidationPattern: `^\d+\.\d{2}$`},
	{Name: "Color", DisplayName: "Color", ValidationPattern: `^[A-Za-z ]+$`},
}

// DefaultCategoryName nombre de la categoría que el seed crea si no existe.
const DefaultCategoryName = "Default Product"

// Steps devuelve la secuencia ordenada de pasos. La categoría por defecto
// referencia tipos que el primer paso garantiza presentes.
func Steps() []Step {
	return []Step{
		{Name: "attribute_types", Run: seedAttributeTypes},
		{Name: "default_category", Run: seedDefaultCategory},
	}
}

// seedAttributeTypes inserta los tipos base que aún no existan (por nombre,
// case-insensitive) y commitea una sola vez.
func seedAttributeTypes(ctx context.Context, store repository.Store) error {
	types := store.AttributeTypes()
	staged := false
	for _, def := range defaultAttributeTypes {
		name := def.Name
		existing, err := types.FindOne(ctx, repository.AttributeTypeFilter{Name: &name})
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		now := time.Now()
		attrType := def
		attrType.ID = uuid.New().String()
		attrType.CreatedAt = now
		attrType.UpdatedAt = now
		if err := types.Add(ctx, &attrType); err != nil {
			return err
		}
		staged = true
	}
	if !staged {
		return nil
	}
	return store.Commit(ctx)
}

// seedDefaultCategory crea la categoría por defecto con Name y Price como
// requisitos de especificación, si todavía no existe.
func seedDefaultCategory(ctx context.Context, store repository.Store) error {
	name := DefaultCategoryName
	existing, err := store.Categories().FindOne(ctx, repository.CategoryFilter{Name: &name})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	var spec []entity.SpecificationAttribute
	for _, typeName := range []string{"Name", "Price"} {
		tn := typeName
		attrType, err := store.AttributeTypes().FindOne(ctx, repository.AttributeTypeFilter{Name: &tn})
		if err != nil {
			return err
		}
		if attrType == nil {
			return fmt.Errorf("tipo de atributo %q no encontrado (¿corrió el paso attribute_types?)", typeName)
		}
		spec = append(spec, entity.SpecificationAttribute{AttributeTypeID: attrType.ID})
	}

	now := time.Now()
	category := &entity.Category{
		ID:            uuid.New().String(),
		Name:          DefaultCategoryName,
		Specification: spec,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.Categories().Add(ctx, category); err != nil {
		return err
	}
	return store.Commit(ctx)
}
