package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryRepo implements ports.CategoryRepository.
type CategoryRepo struct {
	pool Pool
}

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(pool Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

const categoryColumns = "id, name, icon, kind, user_id, organization_id, created_at"

// Create inserts a new category.
func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (id, name, icon, kind, user_id, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Icon, c.Kind, c.UserID, c.OrganizationID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// ListByScope fetches the scope's categories.
func (r *CategoryRepo) ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Category, error) {
	clause, scopeArgs := scopeClause(scope, 1)
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE %s ORDER BY created_at DESC`, categoryColumns, clause)

	rows, err := r.pool.Query(ctx, query, scopeArgs...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Kind, &c.UserID, &c.OrganizationID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Update replaces name, icon, and kind of a category in the scope.
func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category, scope domain.Scope) (bool, error) {
	clause, scopeArgs := scopeClause(scope, 5)
	query := fmt.Sprintf(`UPDATE categories SET name = $1, icon = $2, kind = $3 WHERE id = $4 AND %s`, clause)

	tag, err := r.pool.Exec(ctx, query, append([]any{c.Name, c.Icon, c.Kind, c.ID}, scopeArgs...)...)
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a category in the scope within a database transaction.
func (r *CategoryRepo) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID, scope domain.Scope) (bool, error) {
	clause, scopeArgs := scopeClause(scope, 2)
	query := fmt.Sprintf(`DELETE FROM categories WHERE id = $1 AND %s`, clause)

	tag, err := tx.Exec(ctx, query, append([]any{id}, scopeArgs...)...)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
