package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store implementación del puerto de persistencia sobre PostgreSQL.
// Add/Update acumulan sentencias que Commit ejecuta dentro de una única
// transacción; las lecturas van directo al pool y solo ven estado commiteado.
// El historial de especificaciones y la especificación de categoría viajan
// como JSONB: se escriben y leen siempre como documento completo.
type Store struct {
	pool   *pgxpool.Pool
	mu     sync.Mutex
	staged []statement
}

type statement struct {
	sql  string
	args []any
}

// NewStore construye el Store con el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) stage(sql string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, statement{sql: sql, args: args})
}

// Commit ejecuta todas las sentencias preparadas en una transacción y la
// confirma. Una violación de unicidad se traduce a domain.ErrDuplicate.
// Lo preparado se descarta siempre, haya éxito o error.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	staged := s.staged
	s.staged = nil
	s.mu.Unlock()

	if len(staged) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, st := range staged {
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
			}
			return fmt.Errorf("exec staged statement: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AttributeTypes devuelve la colección de tipos de atributo.
func (s *Store) AttributeTypes() repository.Set[*entity.AttributeType, repository.AttributeTypeFilter] {
	return &attributeTypeSet{store: s}
}

// Categories devuelve la colección de categorías.
func (s *Store) Categories() repository.Set[*entity.Category, repository.CategoryFilter] {
	return &categorySet{store: s}
}

// Products devuelve la colección de productos.
func (s *Store) Products() repository.Set[*entity.Product, repository.ProductFilter] {
	return &productSet{store: s}
}

// nullable convierte el string vacío en NULL (columnas UUID opcionales).
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ─── tipos de atributo ────────────────────────────────────────────────────────

type attributeTypeSet struct {
	store *Store
}

func (c *attributeTypeSet) Add(_ context.Context, t *entity.AttributeType) error {
	c.store.stage(`
		INSERT INTO attribute_types (id, name, display_name, validation_pattern, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.DisplayName, t.ValidationPattern, t.CreatedAt, t.UpdatedAt,
	)
	return nil
}

func (c *attributeTypeSet) Update(_ context.Context, t *entity.AttributeType) error {
	c.store.stage(`
		UPDATE attribute_types SET name = $2, display_name = $3, validation_pattern = $4, updated_at = $5
		WHERE id = $1`,
		t.ID, t.Name, t.DisplayName, t.ValidationPattern, t.UpdatedAt,
	)
	return nil
}

func attributeTypeWhere(f repository.AttributeTypeFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.ID != nil {
		args = append(args, *f.ID)
		clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
	}
	if f.Name != nil {
		args = append(args, *f.Name)
		clauses = append(clauses, fmt.Sprintf("lower(name) = lower($%d)", len(args)))
	}
	return whereClause(clauses), args
}

// whereClause arma el WHERE a partir de las condiciones acumuladas.
func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func (c *attributeTypeSet) FindOne(ctx context.Context, f repository.AttributeTypeFilter) (*entity.AttributeType, error) {
	list, err := c.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, nil
	}
	return list[0], nil
}

func (c *attributeTypeSet) FindAll(ctx context.Context, f repository.AttributeTypeFilter) ([]*entity.AttributeType, error) {
	where, args := attributeTypeWhere(f)
	query := `
		SELECT id, name, display_name, validation_pattern, created_at, updated_at
		FROM attribute_types` + where + ` ORDER BY created_at, id`
	rows, err := c.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attribute types: %w", err)
	}
	defer rows.Close()
	var list []*entity.AttributeType
	for rows.Next() {
		var t entity.AttributeType
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName, &t.ValidationPattern, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attribute type: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// ─── categorías ───────────────────────────────────────────────────────────────

type categorySet struct {
	store *Store
}

func (c *categorySet) Add(_ context.Context, cat *entity.Category) error {
	spec, err := json.Marshal(cat.Specification)
	if err != nil {
		return fmt.Errorf("marshal category specification: %w", err)
	}
	c.store.stage(`
		INSERT INTO categories (id, name, parent_id, specification, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		cat.ID, cat.Name, nullable(cat.ParentID), spec, cat.CreatedAt, cat.UpdatedAt,
	)
	return nil
}

func (c *categorySet) Update(_ context.Context, cat *entity.Category) error {
	spec, err := json.Marshal(cat.Specification)
	if err != nil {
		return fmt.Errorf("marshal category specification: %w", err)
	}
	c.store.stage(`
		UPDATE categories SET name = $2, parent_id = $3, specification = $4, updated_at = $5
		WHERE id = $1`,
		cat.ID, cat.Name, nullable(cat.ParentID), spec, cat.UpdatedAt,
	)
	return nil
}

func categoryWhere(f repository.CategoryFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.ID != nil {
		args = append(args, *f.ID)
		clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
	}
	if f.Name != nil {
		args = append(args, *f.Name)
		clauses = append(clauses, fmt.Sprintf("lower(name) = lower($%d)", len(args)))
	}
	if f.ParentID != nil {
		// ParentID vacío filtra las categorías raíz (parent_id NULL).
		if *f.ParentID == "" {
			clauses = append(clauses, "parent_id IS NULL")
		} else {
			args = append(args, *f.ParentID)
			clauses = append(clauses, fmt.Sprintf("parent_id = $%d", len(args)))
		}
	}
	return whereClause(clauses), args
}

func (c *categorySet) FindOne(ctx context.Context, f repository.CategoryFilter) (*entity.Category, error) {
	list, err := c.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, nil
	}
	return list[0], nil
}

func (c *categorySet) FindAll(ctx context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	where, args := categoryWhere(f)
	query := `
		SELECT id, name, parent_id, specification, created_at, updated_at
		FROM categories` + where + ` ORDER BY created_at, id`
	rows, err := c.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cat)
	}
	return list, rows.Err()
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var cat entity.Category
	var parentID *string
	var spec []byte
	if err := row.Scan(&cat.ID, &cat.Name, &parentID, &spec, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	if parentID != nil {
		cat.ParentID = *parentID
	}
	if err := json.Unmarshal(spec, &cat.Specification); err != nil {
		return nil, fmt.Errorf("unmarshal category specification: %w", err)
	}
	return &cat, nil
}

// ─── productos ────────────────────────────────────────────────────────────────

type productSet struct {
	store *Store
}

func (c *productSet) Add(_ context.Context, p *entity.Product) error {
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return fmt.Errorf("marshal product specifications: %w", err)
	}
	c.store.stage(`
		INSERT INTO products (id, category_id, specifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.CategoryID, specs, p.CreatedAt, p.UpdatedAt,
	)
	return nil
}

func (c *productSet) Update(_ context.Context, p *entity.Product) error {
	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return fmt.Errorf("marshal product specifications: %w", err)
	}
	c.store.stage(`
		UPDATE products SET category_id = $2, specifications = $3, updated_at = $4
		WHERE id = $1`,
		p.ID, p.CategoryID, specs, p.UpdatedAt,
	)
	return nil
}

func productWhere(f repository.ProductFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.ID != nil {
		args = append(args, *f.ID)
		clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id = $%d", len(args)))
	}
	return whereClause(clauses), args
}

func (c *productSet) FindOne(ctx context.Context, f repository.ProductFilter) (*entity.Product, error) {
	list, err := c.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, nil
	}
	return list[0], nil
}

// FindAll consulta por los campos traducibles a SQL y aplica el predicado
// Match en memoria sobre los candidatos.
func (c *productSet) FindAll(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	where, args := productWhere(f)
	query := `
		SELECT id, category_id, specifications, created_at, updated_at
		FROM products` + where + ` ORDER BY created_at, id`
	rows, err := c.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		var specs []byte
		if err := rows.Scan(&p.ID, &p.CategoryID, &specs, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("unmarshal product specifications: %w", err)
		}
		if f.Match != nil && !f.Match(&p) {
			continue
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
