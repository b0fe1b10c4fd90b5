package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campusdeals/api/internal/query"
)

const categoryColumns = "id, name, slug, created_at, updated_at"

func scanCategory(row *sql.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.Id, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (db *PgRepository) CreateCategory(params CreateCategoryParams) (Category, error) {
	row := db.conn.QueryRow(
		"INSERT INTO categories (name, slug, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $3) RETURNING "+categoryColumns,
		params.Name,
		params.Slug,
		time.Now().UTC(),
	)

	return scanCategory(row)
}

func (db *PgRepository) UpdateCategory(params UpdateCategoryParams) (Category, error) {
	row := db.conn.QueryRow(
		"UPDATE categories SET name = $2, slug = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING "+categoryColumns,
		params.CategoryId,
		params.Name,
		params.Slug,
		time.Now().UTC(),
	)

	return scanCategory(row)
}

func (db *PgRepository) GetCategoryById(categoryId int) (Category, error) {
	row := db.conn.QueryRow(
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1 LIMIT 1",
		categoryId,
	)

	return scanCategory(row)
}

func (db *PgRepository) DeleteCategory(categoryId int) error {
	res, err := db.conn.Exec("DELETE FROM categories WHERE id = $1", categoryId)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) ListCategories(p query.Params, f query.SlugFilter) ([]Category, int, error) {
	b := &query.Builder{}
	b.Search(p.Search, "name", "slug")
	if f.Name != "" {
		b.Eq("name", f.Name)
	}
	if f.Slug != "" {
		b.Eq("slug", f.Slug)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM categories %s", b.Clause())
	if err := db.conn.QueryRow(countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	pageQuery := fmt.Sprintf(
		"SELECT "+categoryColumns+" FROM categories %s ORDER BY %s LIMIT %s OFFSET %s",
		b.Clause(), p.OrderBy(), b.Arg(p.Limit), b.Arg(p.Offset()),
	)

	rows, err := db.conn.Query(pageQuery, b.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories = make([]Category, 0, p.Limit)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Id, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}

		categories = append(categories, c)
	}

	return categories, total, rows.Err()
}
