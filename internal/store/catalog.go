package store

import (
	"context"
	"time"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

// ListSlugItemsParams holds filters shared by category and genre listings.
type ListSlugItemsParams struct {
	Search string // name substring, empty for all
	Limit  int64
	Offset int64
}

// CreateCategory inserts a category and returns the stored row.
func (q *Queries) CreateCategory(ctx context.Context, name, slug string) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)
		RETURNING id, name, slug, created_at`,
		name, slug, time.Now().UTC()).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

// GetCategoryBySlug fetches a category by its unique slug.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at FROM categories WHERE slug = ?`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

// ListCategories returns a page of categories ordered by name descending.
func (q *Queries) ListCategories(ctx context.Context, arg ListSlugItemsParams) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, slug, created_at FROM categories
		WHERE (? = '' OR name LIKE '%' || ? || '%')
		ORDER BY name DESC
		LIMIT ? OFFSET ?`,
		arg.Search, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountCategories returns the number of categories matching the filter.
func (q *Queries) CountCategories(ctx context.Context, search string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM categories
		WHERE (? = '' OR name LIKE '%' || ? || '%')`, search, search).Scan(&n)
	return n, err
}

// DeleteCategory removes a category by slug. Titles referencing it keep
// existing with a null category (ON DELETE SET NULL).
func (q *Queries) DeleteCategory(ctx context.Context, slug string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE slug = ?`, slug)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateGenre inserts a genre and returns the stored row.
func (q *Queries) CreateGenre(ctx context.Context, name, slug string) (model.Genre, error) {
	var g model.Genre
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO genres (name, slug, created_at) VALUES (?, ?, ?)
		RETURNING id, name, slug, created_at`,
		name, slug, time.Now().UTC()).
		Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt)
	return g, err
}

// GetGenreBySlug fetches a genre by its unique slug.
func (q *Queries) GetGenreBySlug(ctx context.Context, slug string) (model.Genre, error) {
	var g model.Genre
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at FROM genres WHERE slug = ?`, slug).
		Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt)
	return g, err
}

// ListGenres returns a page of genres ordered by name descending.
func (q *Queries) ListGenres(ctx context.Context, arg ListSlugItemsParams) ([]model.Genre, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, slug, created_at FROM genres
		WHERE (? = '' OR name LIKE '%' || ? || '%')
		ORDER BY name DESC
		LIMIT ? OFFSET ?`,
		arg.Search, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// CountGenres returns the number of genres matching the filter.
func (q *Queries) CountGenres(ctx context.Context, search string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM genres
		WHERE (? = '' OR name LIKE '%' || ? || '%')`, search, search).Scan(&n)
	return n, err
}

// DeleteGenre removes a genre by slug. Title associations are removed by
// the cascade; titles themselves are untouched.
func (q *Queries) DeleteGenre(ctx context.Context, slug string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM genres WHERE slug = ?`, slug)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
