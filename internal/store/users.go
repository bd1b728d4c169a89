package store

import (
	"context"
	"time"

	"github.com/PaulSssar/yamdb-final/internal/model"
)

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_superuser, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.Bio, &u.Role, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Bio         string
	Role        string
	IsSuperuser bool
}

// CreateUser inserts a user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	now := time.Now().UTC()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Username, arg.Email, arg.FirstName, arg.LastName, arg.Bio,
		arg.Role, arg.IsSuperuser, now, now)
	return scanUser(row)
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername fetches a user by unique username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByEmail fetches a user by unique email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsersParams holds filters for ListUsers.
type ListUsersParams struct {
	Search string // username substring, empty for all
	Limit  int64
	Offset int64
}

// ListUsers returns a page of users ordered by username.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE (? = '' OR username LIKE '%' || ? || '%')
		ORDER BY username
		LIMIT ? OFFSET ?`,
		arg.Search, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users matching the search filter.
func (q *Queries) CountUsers(ctx context.Context, search string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE (? = '' OR username LIKE '%' || ? || '%')`,
		search, search).Scan(&n)
	return n, err
}

// UpdateUserParams holds the full set of mutable fields for UpdateUser.
// Handlers load the existing row first and overwrite only the fields the
// request supplied.
type UpdateUserParams struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// UpdateUser updates a user's mutable fields and returns the stored row.
// is_superuser is not updatable through this path.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, first_name = ?, last_name = ?, bio = ?, role = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Username, arg.Email, arg.FirstName, arg.LastName, arg.Bio,
		arg.Role, time.Now().UTC(), arg.ID)
	return scanUser(row)
}

// DeleteUser removes a user; reviews and comments cascade.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// TouchLastLogin stamps last_login_at. Called on a successful token
// exchange, which also invalidates previously issued confirmation codes
// through the generator's state binding.
func (q *Queries) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), time.Now().UTC(), id)
	return err
}

// DeleteStaleRegistrations removes non-privileged users that were created
// before cutoff and never exchanged a token. Returns the number of rows
// deleted.
func (q *Queries) DeleteStaleRegistrations(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE last_login_at IS NULL
		  AND is_superuser = 0
		  AND role = 'user'
		  AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
