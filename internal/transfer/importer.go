// Package transfer loads catalog fixtures from CSV files.
package transfer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

// File names the importer looks for, in dependency order.
var importFiles = []string{
	"users.csv",
	"category.csv",
	"genre.csv",
	"titles.csv",
	"genre_title.csv",
	"review.csv",
	"comments.csv",
}

// Importer loads CSV fixture files into the database. Row IDs from the
// files are preserved so cross-file references stay intact.
type Importer struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(db *sql.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// Stats counts imported rows per file.
type Stats map[string]int

// ImportDir loads every known CSV file found in dir inside a single
// transaction. Missing files are skipped; a bad row aborts the whole
// import.
func (im *Importer) ImportDir(ctx context.Context, dir string) (Stats, error) {
	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stats := make(Stats, len(importFiles))
	for _, name := range importFiles {
		path := filepath.Join(dir, name)
		rows, err := im.importFile(ctx, tx, name, path)
		if errors.Is(err, os.ErrNotExist) {
			im.logger.Warn("fixture file missing, skipping", "file", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", name, err)
		}
		stats[name] = rows
		im.logger.Info("imported fixture file", "file", name, "rows", rows)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stats, nil
}

// rowHandler inserts one CSV record, given a header-indexed field lookup.
type rowHandler func(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error

func (im *Importer) importFile(ctx context.Context, tx *sql.Tx, name, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	handler, ok := handlers[name]
	if !ok {
		return 0, fmt.Errorf("no handler for %s", name)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}

		get := func(col string) (string, error) {
			i, ok := index[col]
			if !ok {
				return "", fmt.Errorf("column %q not in header", col)
			}
			return record[i], nil
		}
		if err := handler(ctx, tx, get); err != nil {
			return rows, fmt.Errorf("row %d: %w", rows+2, err)
		}
		rows++
	}
	return rows, nil
}

var handlers = map[string]rowHandler{
	"users.csv":       importUser,
	"category.csv":    importCategory,
	"genre.csv":       importGenre,
	"titles.csv":      importTitle,
	"genre_title.csv": importTitleGenre,
	"review.csv":      importReview,
	"comments.csv":    importComment,
}

func getInt(get func(string) (string, error), col string) (int64, error) {
	s, err := get(col)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", col, err)
	}
	return n, nil
}

// optional returns the column value or "" when the column is absent.
func optional(get func(string) (string, error), col string) string {
	s, err := get(col)
	if err != nil {
		return ""
	}
	return s
}

// pubDateLayouts covers the timestamp shapes seen in fixture exports.
var pubDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parsePubDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range pubDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func importUser(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	id, err := getInt(get, "id")
	if err != nil {
		return err
	}
	username, err := get("username")
	if err != nil {
		return err
	}
	email, err := get("email")
	if err != nil {
		return err
	}
	role := strings.TrimSpace(optional(get, "role"))
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, bio, role, is_superuser, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, username, email,
		optional(get, "first_name"), optional(get, "last_name"), optional(get, "bio"),
		role, now, now)
	return err
}

func importCategory(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	return importSlugItem(ctx, tx, "categories", get)
}

func importGenre(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	return importSlugItem(ctx, tx, "genres", get)
}

func importSlugItem(ctx context.Context, tx *sql.Tx, table string, get func(string) (string, error)) error {
	id, err := getInt(get, "id")
	if err != nil {
		return err
	}
	name, err := get("name")
	if err != nil {
		return err
	}
	slug, err := get("slug")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
		id, name, slug, time.Now().UTC())
	return err
}

func importTitle(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	id, err := getInt(get, "id")
	if err != nil {
		return err
	}
	name, err := get("name")
	if err != nil {
		return err
	}
	year, err := getInt(get, "year")
	if err != nil {
		return err
	}
	if err := model.ValidateYear(year); err != nil {
		return err
	}

	categoryID := sql.NullInt64{}
	if s := strings.TrimSpace(optional(get, "category")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("column %q: %w", "category", err)
		}
		categoryID = sql.NullInt64{Int64: n, Valid: true}
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO titles (id, name, year, description, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, year, optional(get, "description"), categoryID, now, now)
	return err
}

func importTitleGenre(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	titleID, err := getInt(get, "title_id")
	if err != nil {
		return err
	}
	genreID, err := getInt(get, "genre_id")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?)`, titleID, genreID)
	return err
}

func importReview(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	id, err := getInt(get, "id")
	if err != nil {
		return err
	}
	titleID, err := getInt(get, "title_id")
	if err != nil {
		return err
	}
	authorID, err := getInt(get, "author")
	if err != nil {
		return err
	}
	text, err := get("text")
	if err != nil {
		return err
	}
	score, err := getInt(get, "score")
	if err != nil {
		return err
	}
	if err := model.ValidateScore(score); err != nil {
		return err
	}
	pubDate, err := parsePubDate(optional(get, "pub_date"))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (id, title_id, author_id, text, score, pub_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, titleID, authorID, text, score, pubDate)
	return err
}

func importComment(ctx context.Context, tx *sql.Tx, get func(string) (string, error)) error {
	id, err := getInt(get, "id")
	if err != nil {
		return err
	}
	reviewID, err := getInt(get, "review_id")
	if err != nil {
		return err
	}
	authorID, err := getInt(get, "author")
	if err != nil {
		return err
	}
	text, err := get("text")
	if err != nil {
		return err
	}
	pubDate, err := parsePubDate(optional(get, "pub_date"))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO comments (id, review_id, author_id, text, pub_date)
		VALUES (?, ?, ?, ?, ?)`,
		id, reviewID, authorID, text, pubDate)
	return err
}
