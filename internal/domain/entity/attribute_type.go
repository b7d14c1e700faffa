package entity

import (
	"regexp"
	"time"
)

// AttributeType representa un tipo de atributo del catálogo (ej. "Price", "Color").
// Name es único entre tipos (comparación case-insensitive, validada en el caso de uso).
// ValidationPattern es la expresión regular que describe los valores aceptables;
// su sintaxis se valida al crear el tipo, no al escribir valores de producto.
type AttributeType struct {
	ID                string
	Name              string
	DisplayName       string
	ValidationPattern string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate verifica si un valor cumple el patrón del tipo. Helper opcional para
// los llamadores: el caso de uso no lo invoca al escribir (valores históricos
// podrían no cumplir un patrón ajustado después).
func (t *AttributeType) Validate(value string) (bool, error) {
	re, err := regexp.Compile(t.ValidationPattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}
