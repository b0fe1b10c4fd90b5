package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campusdeals/api/internal/query"
)

const userColumns = "id, name, email, role, is_verified, phone, positive_count, neutral_count, negative_count, created_at, updated_at"

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.Id,
		&u.Name,
		&u.EmailAddress,
		&u.Role,
		&u.IsVerified,
		&u.Phone,
		&u.PositiveCount,
		&u.NeutralCount,
		&u.NegativeCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (db *PgRepository) CreateUser(params CreateUserParams) (User, error) {
	row := db.conn.QueryRow(
		"INSERT INTO users (name, email, password_hash, phone, created_at, updated_at) "+
			"VALUES ($1, $2, $3, NULLIF($4, ''), $5, $5) RETURNING "+userColumns,
		params.Name,
		params.EmailAddress,
		params.PasswordHash,
		params.Phone,
		time.Now().UTC(),
	)

	return scanUser(row)
}

func (db *PgRepository) UpdateUser(params UpdateUserParams) (User, error) {
	row := db.conn.QueryRow(
		"UPDATE users SET name = $2, password_hash = $3, phone = NULLIF($4, ''), updated_at = $5 "+
			"WHERE id = $1 RETURNING "+userColumns,
		params.UserId,
		params.Name,
		params.PasswordHash,
		params.Phone,
		time.Now().UTC(),
	)

	return scanUser(row)
}

func (db *PgRepository) GetUserById(userId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE id = $1 LIMIT 1",
		userId,
	)

	return scanUser(row)
}

func (db *PgRepository) GetUserByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, role, is_verified, created_at, updated_at "+
			"FROM users WHERE email = $1 LIMIT 1",
		email,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Name,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgRepository) DeleteUser(userId int) error {
	res, err := db.conn.Exec("DELETE FROM users WHERE id = $1", userId)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) ListUsers(p query.Params, f query.UserFilter) ([]User, int, error) {
	b := &query.Builder{}
	b.Search(p.Search, "name", "email", "phone")
	if f.Role != "" {
		b.Eq("role", f.Role)
	}
	if f.IsVerified != nil {
		b.Eq("is_verified", *f.IsVerified)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", b.Clause())
	if err := db.conn.QueryRow(countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	pageQuery := fmt.Sprintf(
		"SELECT "+userColumns+" FROM users %s ORDER BY %s LIMIT %s OFFSET %s",
		b.Clause(), p.OrderBy(), b.Arg(p.Limit), b.Arg(p.Offset()),
	)

	rows, err := db.conn.Query(pageQuery, b.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users = make([]User, 0, p.Limit)
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.Id,
			&u.Name,
			&u.EmailAddress,
			&u.Role,
			&u.IsVerified,
			&u.Phone,
			&u.PositiveCount,
			&u.NeutralCount,
			&u.NegativeCount,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}

		users = append(users, u)
	}

	return users, total, rows.Err()
}
