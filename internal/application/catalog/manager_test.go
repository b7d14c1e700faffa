package catalog_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newManager(t *testing.T) *catalog.Manager {
	t.Helper()
	return catalog.NewManager(memory.NewStore())
}

func attr(typeID, value string) entity.Attribute {
	return entity.Attribute{AttributeTypeID: typeID, Value: value}
}

func spec(attrs ...entity.Attribute) entity.Specification {
	return entity.Specification{Attributes: attrs, CreatedAt: time.Now()}
}

func productIDs(products []*entity.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCategory_ConsultaPorNombreEnCualquierCase(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	created, err := m.CreateCategory(ctx, "Electronics", "", nil)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	for _, name := range []string{"Electronics", "electronics", "ELECTRONICS", "eLeCtRoNiCs"} {
		got, err := m.GetCategoryByName(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, got, "la categoría debe encontrarse consultando %q", name)
		assert.Equal(t, created.ID, got.ID)
	}
}

func TestCreateCategory_NoValidaNombreDuplicado(t *testing.T) {
	// Asimetría conocida con CreateAttributeType: la unicidad del nombre de
	// categoría es una decisión de producto todavía abierta.
	ctx := context.Background()
	m := newManager(t)

	_, err := m.CreateCategory(ctx, "Repetida", "", nil)
	require.NoError(t, err)
	_, err = m.CreateCategory(ctx, "Repetida", "", nil)
	require.NoError(t, err)

	all, err := m.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Con dos homónimas, la consulta por nombre ya no identifica una única.
	got, err := m.GetCategoryByName(ctx, "Repetida")
	require.NoError(t, err)
	assert.Nil(t, got, "el puerto devuelve ausencia cuando el filtro no identifica exactamente una")
}

func TestGetChildCategories(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	root, err := m.CreateCategory(ctx, "Root", "", nil)
	require.NoError(t, err)
	childA, err := m.CreateCategory(ctx, "Child A", root.ID, nil)
	require.NoError(t, err)
	childB, err := m.CreateCategory(ctx, "Child B", root.ID, nil)
	require.NoError(t, err)
	_, err = m.CreateCategory(ctx, "Other Root", "", nil)
	require.NoError(t, err)

	children, err := m.GetChildCategories(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 2, "solo las hijas directas de Root")
	ids := []string{children[0].ID, children[1].ID}
	assert.ElementsMatch(t, []string{childA.ID, childB.ID}, ids)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tipos de atributo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAttributeType_DuplicadoCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	_, err := m.CreateAttributeType(ctx, "Price", "Price", `^\d+\.\d{2}$`)
	require.NoError(t, err)

	_, err = m.CreateAttributeType(ctx, "price", "Price (again)", `^.+$`)
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "Price", "el mensaje debe nombrar el nombre en conflicto")

	// Invariante de conteo: el conjunto de tipos no cambió.
	all, err := m.GetAttributeTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateAttributeType_PatronInvalido(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	for _, pattern := range []string{`[`, `(`, `a{2,1}`, `*x`} {
		_, err := m.CreateAttributeType(ctx, "Broken", "Broken", pattern)
		require.ErrorIs(t, err, domain.ErrInvalidInput, "patrón %q debe rechazarse", pattern)
		assert.Contains(t, err.Error(), pattern, "el mensaje debe nombrar el patrón ofensor")
		assert.Contains(t, err.Error(), "Broken", "el mensaje debe nombrar el tipo")
	}

	// Ninguna escritura parcial.
	all, err := m.GetAttributeTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAttributeTypeByName_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	created, err := m.CreateAttributeType(ctx, "Color", "Color", `^[A-Za-z ]+$`)
	require.NoError(t, err)

	got, err := m.GetAttributeTypeByName(ctx, "COLOR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	byID, err := m.GetAttributeType(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Color", byID.Name)

	missing, err := m.GetAttributeType(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateProduct_HistorialPreservado(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	cat, err := m.CreateCategory(ctx, "Cat", "", nil)
	require.NoError(t, err)
	created, err := m.CreateProduct(ctx, spec(attr("name", "v0")), cat.ID)
	require.NoError(t, err)

	const updates = 3
	for i := 0; i < updates; i++ {
		before, err := m.GetProduct(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, before)
		history := before.Specifications

		updated, err := m.UpdateProduct(ctx, created.ID, spec(attr("name", fmt.Sprintf("v%d", i+1))))
		require.NoError(t, err)
		require.Len(t, updated.Specifications, len(history)+1,
			"cada actualización agrega exactamente una especificación")
		assert.Equal(t, history, updated.Specifications[:len(history)],
			"el prefijo del historial debe quedar idéntico")
	}

	final, err := m.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, final)
	assert.Len(t, final.Specifications, updates+1, "n actualizaciones => n+1 especificaciones")
	assert.Equal(t, "v0", final.Specifications[0].Attributes[0].Value)
}

func TestUpdateProduct_NoExiste(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	_, err := m.UpdateProduct(ctx, "11111111-1111-1111-1111-111111111111", spec(attr("name", "x")))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetProducts_YFiltros(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	catA, err := m.CreateCategory(ctx, "A", "", nil)
	require.NoError(t, err)
	catB, err := m.CreateCategory(ctx, "B", "", nil)
	require.NoError(t, err)

	pa, err := m.CreateProduct(ctx, spec(attr("name", "a")), catA.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("name", "b")), catB.ID)
	require.NoError(t, err)

	all, err := m.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := m.GetProduct(ctx, pa.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, catA.ID, got.CategoryID)

	// Predicado arbitrario vía filtro.
	matched, err := m.FindProduct(ctx, repository.ProductFilter{
		Match: func(p *entity.Product) bool { return p.HasAttribute(attr("name", "a")) },
	})
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.Equal(t, pa.ID, matched.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos relacionados (intersección de filtros de atributo)
// ──────────────────────────────────────────────────────────────────────────────

func TestGetRelatedProducts_EsInterseccionConmutativa(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	cat, err := m.CreateCategory(ctx, "Cat", "", nil)
	require.NoError(t, err)

	// (color, size): Red/S, Red/M, Blue/S
	redS, err := m.CreateProduct(ctx, spec(attr("color", "Red"), attr("size", "S")), cat.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Red"), attr("size", "M")), cat.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Blue"), attr("size", "S")), cat.ID)
	require.NoError(t, err)

	red := attr("color", "red") // case-insensitive a propósito
	small := attr("size", "s")

	byRed, err := m.GetRelatedProducts(ctx, red)
	require.NoError(t, err)
	bySmall, err := m.GetRelatedProducts(ctx, small)
	require.NoError(t, err)
	both, err := m.GetRelatedProducts(ctx, red, small)
	require.NoError(t, err)
	bothReversed, err := m.GetRelatedProducts(ctx, small, red)
	require.NoError(t, err)

	assert.Len(t, byRed, 2)
	assert.Len(t, bySmall, 2)
	require.Len(t, both, 1, "la combinación es intersección, no unión")
	assert.Equal(t, redS.ID, both[0].ID)
	assert.ElementsMatch(t, productIDs(both), productIDs(bothReversed),
		"el orden de los filtros no altera el resultado")

	// Intersección explícita de los resultados individuales.
	inBoth := intersect(productIDs(byRed), productIDs(bySmall))
	assert.ElementsMatch(t, inBoth, productIDs(both))
}

func TestGetRelatedProducts_SinFiltrosDevuelveTodos(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	cat, err := m.CreateCategory(ctx, "Cat", "", nil)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Red")), cat.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Blue")), cat.ID)
	require.NoError(t, err)

	all, err := m.GetRelatedProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "lista de filtros vacía => todos los productos")
}

func TestGetRelatedProductsByCategory(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	catA, err := m.CreateCategory(ctx, "A", "", nil)
	require.NoError(t, err)
	catB, err := m.CreateCategory(ctx, "B", "", nil)
	require.NoError(t, err)

	inA, err := m.CreateProduct(ctx, spec(attr("color", "Red")), catA.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Red")), catB.ID)
	require.NoError(t, err)

	got, err := m.GetRelatedProductsByCategory(ctx, catA.ID, attr("color", "Red"))
	require.NoError(t, err)
	require.Len(t, got, 1, "la variante por categoría restringe a esa categoría")
	assert.Equal(t, inA.ID, got[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Valores de atributo por categoría
// ──────────────────────────────────────────────────────────────────────────────

func TestGetAttributeValues_DistintosCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	cat, err := m.CreateCategory(ctx, "Cat", "", nil)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Red")), cat.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "RED")), cat.ID)
	require.NoError(t, err)
	_, err = m.CreateProduct(ctx, spec(attr("color", "Blue")), cat.ID)
	require.NoError(t, err)

	values, err := m.GetAttributeValues(ctx, cat.ID, "color")
	require.NoError(t, err)
	assert.Len(t, values, 2, "Red y RED son el mismo valor (case-insensitive)")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario completo: Widget a 9.99
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenarioCatalogoPorDefecto(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	nameType, err := m.CreateAttributeType(ctx, "Name", "Name", `^.+$`)
	require.NoError(t, err)
	priceType, err := m.CreateAttributeType(ctx, "Price", "Price", `^\d+\.\d{2}$`)
	require.NoError(t, err)

	cat, err := m.CreateCategory(ctx, "Default Product", "", []entity.SpecificationAttribute{
		{AttributeTypeID: nameType.ID},
		{AttributeTypeID: priceType.ID},
	})
	require.NoError(t, err)

	widget, err := m.CreateProduct(ctx, spec(
		attr(nameType.ID, "Widget"),
		attr(priceType.ID, "9.99"),
	), cat.ID)
	require.NoError(t, err)

	all, err := m.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "el catálogo tiene exactamente un producto")

	matching, err := m.GetRelatedProducts(ctx, attr(priceType.ID, "9.99"))
	require.NoError(t, err)
	require.Len(t, matching, 1)
	assert.Equal(t, widget.ID, matching[0].ID)

	none, err := m.GetRelatedProducts(ctx, attr(priceType.ID, "5.00"))
	require.NoError(t, err)
	assert.Empty(t, none, "ningún producto cuesta 5.00")
}

// intersect devuelve los IDs presentes en ambos conjuntos.
func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	var out []string
	for _, id := range a {
		if inB[id] {
			out = append(out, id)
		}
	}
	return out
}
