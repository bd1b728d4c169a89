package store

import (
	"context"
	"time"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

const reviewColumns = `r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date`

func scanReview(row interface{ Scan(...any) error }) (model.Review, error) {
	var r model.Review
	err := row.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.PubDate)
	return r, err
}

// CreateReviewParams holds the fields for CreateReview.
type CreateReviewParams struct {
	TitleID  int64
	AuthorID int64
	Text     string
	Score    int64
}

// CreateReview inserts a review. The UNIQUE (title_id, author_id) index
// rejects a second review by the same author atomically; callers map that
// to a validation failure via IsUniqueViolation.
func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (model.Review, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO reviews (title_id, author_id, text, score, pub_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		arg.TitleID, arg.AuthorID, arg.Text, arg.Score, time.Now().UTC()).Scan(&id)
	if err != nil {
		return model.Review{}, err
	}
	return q.GetReview(ctx, id)
}

// GetReview fetches a review with its author's username.
func (q *Queries) GetReview(ctx context.Context, id int64) (model.Review, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.id = ?`, id)
	return scanReview(row)
}

// ReviewExists reports whether the author already reviewed the title.
func (q *Queries) ReviewExists(ctx context.Context, titleID, authorID int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE title_id = ? AND author_id = ?`,
		titleID, authorID).Scan(&n)
	return n > 0, err
}

// ListReviewsParams holds pagination for a title's reviews.
type ListReviewsParams struct {
	TitleID int64
	Limit   int64
	Offset  int64
}

// ListReviews returns a page of a title's reviews, newest first.
func (q *Queries) ListReviews(ctx context.Context, arg ListReviewsParams) ([]model.Review, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		JOIN users u ON u.id = r.author_id
		WHERE r.title_id = ?
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT ? OFFSET ?`,
		arg.TitleID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// CountReviews returns the number of reviews for a title.
func (q *Queries) CountReviews(ctx context.Context, titleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reviews WHERE title_id = ?`, titleID).Scan(&n)
	return n, err
}

// UpdateReview updates a review's text and score. pub_date is immutable.
func (q *Queries) UpdateReview(ctx context.Context, id int64, text string, score int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE reviews SET text = ?, score = ? WHERE id = ?`, text, score, id)
	return err
}

// DeleteReview removes a review; its comments cascade.
func (q *Queries) DeleteReview(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	return err
}

const commentColumns = `c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date`

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate)
	return c, err
}

// CreateComment inserts a comment on a review.
func (q *Queries) CreateComment(ctx context.Context, reviewID, authorID int64, text string) (model.Comment, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO comments (review_id, author_id, text, pub_date)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		reviewID, authorID, text, time.Now().UTC()).Scan(&id)
	if err != nil {
		return model.Comment{}, err
	}
	return q.GetComment(ctx, id)
}

// GetComment fetches a comment with its author's username.
func (q *Queries) GetComment(ctx context.Context, id int64) (model.Comment, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = ?`, id)
	return scanComment(row)
}

// ListCommentsParams holds pagination for a review's comments.
type ListCommentsParams struct {
	ReviewID int64
	Limit    int64
	Offset   int64
}

// ListComments returns a page of a review's comments, newest first.
func (q *Queries) ListComments(ctx context.Context, arg ListCommentsParams) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.review_id = ?
		ORDER BY c.pub_date DESC, c.id DESC
		LIMIT ? OFFSET ?`,
		arg.ReviewID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CountComments returns the number of comments on a review.
func (q *Queries) CountComments(ctx context.Context, reviewID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM comments WHERE review_id = ?`, reviewID).Scan(&n)
	return n, err
}

// UpdateComment updates a comment's text. pub_date is immutable.
func (q *Queries) UpdateComment(ctx context.Context, id int64, text string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ?`, text, id)
	return err
}

// DeleteComment removes a comment.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}
