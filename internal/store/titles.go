package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

// TitleRow is a title with its rating aggregated at query time.
type TitleRow struct {
	ID          int64
	Name        string
	Year        int64
	Description string
	CategoryID  sql.NullInt64
	Rating      sql.NullFloat64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTitleParams holds the fields for CreateTitle.
type CreateTitleParams struct {
	Name        string
	Year        int64
	Description string
	CategoryID  sql.NullInt64
}

// CreateTitle inserts a title.
func (q *Queries) CreateTitle(ctx context.Context, arg CreateTitleParams) (TitleRow, error) {
	now := time.Now().UTC()
	var t TitleRow
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO titles (name, year, description, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, name, year, description, category_id, created_at, updated_at`,
		arg.Name, arg.Year, arg.Description, arg.CategoryID, now, now).
		Scan(&t.ID, &t.Name, &t.Year, &t.Description, &t.CategoryID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// GetTitle fetches a title with its rating computed as the mean review
// score, NULL when no reviews exist.
func (q *Queries) GetTitle(ctx context.Context, id int64) (TitleRow, error) {
	var t TitleRow
	err := q.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       AVG(r.score) AS rating, t.created_at, t.updated_at
		FROM titles t
		LEFT JOIN reviews r ON r.title_id = t.id
		WHERE t.id = ?
		GROUP BY t.id`, id).
		Scan(&t.ID, &t.Name, &t.Year, &t.Description, &t.CategoryID,
			&t.Rating, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTitlesParams holds the search filters for ListTitles and
// CountTitles. Zero values mean "no filter".
type ListTitlesParams struct {
	CategorySlug string
	GenreSlug    string
	Name         string // substring match
	Year         sql.NullInt64
	Limit        int64
	Offset       int64
}

// titleFilter builds the shared FROM/WHERE clause for title queries.
func titleFilter(arg ListTitlesParams) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(" FROM titles t")
	if arg.GenreSlug != "" {
		sb.WriteString(`
		JOIN title_genres tg ON tg.title_id = t.id
		JOIN genres g ON g.id = tg.genre_id AND g.slug = ?`)
		args = append(args, arg.GenreSlug)
	}
	sb.WriteString(" WHERE 1=1")
	if arg.CategorySlug != "" {
		sb.WriteString(" AND t.category_id IN (SELECT id FROM categories WHERE slug = ?)")
		args = append(args, arg.CategorySlug)
	}
	if arg.Name != "" {
		sb.WriteString(" AND t.name LIKE '%' || ? || '%'")
		args = append(args, arg.Name)
	}
	if arg.Year.Valid {
		sb.WriteString(" AND t.year = ?")
		args = append(args, arg.Year.Int64)
	}

	return sb.String(), args
}

// ListTitles returns a page of titles with ratings, ordered by rating
// descending with unrated titles last.
func (q *Queries) ListTitles(ctx context.Context, arg ListTitlesParams) ([]TitleRow, error) {
	filter, args := titleFilter(arg)

	query := fmt.Sprintf(`
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       AVG(r.score) AS rating, t.created_at, t.updated_at
		%s
		GROUP BY t.id
		ORDER BY (rating IS NULL), rating DESC, t.id
		LIMIT ? OFFSET ?`,
		strings.Replace(filter, " FROM titles t", " FROM titles t LEFT JOIN reviews r ON r.title_id = t.id", 1))
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []TitleRow
	for rows.Next() {
		var t TitleRow
		if err := rows.Scan(&t.ID, &t.Name, &t.Year, &t.Description, &t.CategoryID,
			&t.Rating, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// CountTitles returns the number of titles matching the filters.
func (q *Queries) CountTitles(ctx context.Context, arg ListTitlesParams) (int64, error) {
	filter, args := titleFilter(arg)

	var n int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT t.id)"+filter, args...).Scan(&n)
	return n, err
}

// UpdateTitleParams holds the full set of mutable fields for UpdateTitle.
type UpdateTitleParams struct {
	ID          int64
	Name        string
	Year        int64
	Description string
	CategoryID  sql.NullInt64
}

// UpdateTitle updates a title's fields.
func (q *Queries) UpdateTitle(ctx context.Context, arg UpdateTitleParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE titles
		SET name = ?, year = ?, description = ?, category_id = ?, updated_at = ?
		WHERE id = ?`,
		arg.Name, arg.Year, arg.Description, arg.CategoryID, time.Now().UTC(), arg.ID)
	return err
}

// DeleteTitle removes a title; its reviews and comments cascade.
func (q *Queries) DeleteTitle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM titles WHERE id = ?`, id)
	return err
}

// SetTitleGenres replaces the title's genre associations.
func (q *Queries) SetTitleGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM title_genres WHERE title_id = ?`, titleID); err != nil {
		return err
	}
	for _, genreID := range genreIDs {
		if _, err := q.db.ExecContext(ctx, `
			INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)`, titleID, genreID); err != nil {
			return err
		}
	}
	return nil
}

// TitleGenreRow associates a genre with a title for batch loading.
type TitleGenreRow struct {
	TitleID int64
	Genre   model.Genre
}

// ListGenresForTitles loads the genres of every title in ids, ordered by
// genre name within each title.
func (q *Queries) ListGenresForTitles(ctx context.Context, ids []int64) ([]TitleGenreRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT tg.title_id, g.id, g.name, g.slug, g.created_at
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (`+placeholders+`)
		ORDER BY tg.title_id, g.name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TitleGenreRow
	for rows.Next() {
		var r TitleGenreRow
		if err := rows.Scan(&r.TitleID, &r.Genre.ID, &r.Genre.Name, &r.Genre.Slug, &r.Genre.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetCategoryByID fetches a category by primary key, used when rendering
// titles.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}
