package entity

import (
	"strings"
	"time"
)

// Product representa un producto del catálogo con su historial de especificaciones.
// El historial es append-only: una actualización agrega una Specification nueva al
// final, nunca modifica las anteriores. La activa es la última por convención.
type Product struct {
	ID             string
	CategoryID     string
	Specifications []Specification
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Specification es una foto versionada de los valores de atributo de un producto.
type Specification struct {
	Attributes []Attribute `json:"attributes"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Attribute es un valor de atributo dentro de una especificación. La conformidad
// del valor contra el patrón de su tipo no se valida al escribir.
type Attribute struct {
	AttributeTypeID string `json:"attribute_type_id"`
	Value           string `json:"value"`
}

// ActiveSpecification devuelve la especificación vigente (la última del historial)
// o nil si el producto no tiene ninguna.
func (p *Product) ActiveSpecification() *Specification {
	if len(p.Specifications) == 0 {
		return nil
	}
	return &p.Specifications[len(p.Specifications)-1]
}

// AppendSpecification agrega una especificación al final del historial.
// Nunca remueve ni reemplaza entradas anteriores.
func (p *Product) AppendSpecification(s Specification) {
	p.Specifications = append(p.Specifications, s)
}

// HasAttribute indica si la especificación activa contiene un atributo del mismo
// tipo y con el mismo valor (comparación case-insensitive del valor).
func (p *Product) HasAttribute(a Attribute) bool {
	active := p.ActiveSpecification()
	if active == nil {
		return false
	}
	for _, attr := range active.Attributes {
		if attr.AttributeTypeID == a.AttributeTypeID && strings.EqualFold(attr.Value, a.Value) {
			return true
		}
	}
	return false
}
