package entity

import "time"

// Category representa una categoría de productos (jerárquica opcional).
// Specification define qué tipos de atributo debe declarar un producto de la categoría.
// El nombre NO se valida como único al crear (decisión de producto pendiente).
type Category struct {
	ID            string
	Name          string
	ParentID      string // vacío si es raíz
	Specification []SpecificationAttribute
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SpecificationAttribute es un requisito de la especificación de una categoría:
// la referencia a un tipo de atributo que sus productos deben llevar.
type SpecificationAttribute struct {
	AttributeTypeID string `json:"attribute_type_id"`
}
