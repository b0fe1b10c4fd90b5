package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campusdeals/api/internal/query"
)

const campusColumns = "id, name, slug, lat, lon, created_at, updated_at"

func scanCampus(row *sql.Row) (Campus, error) {
	var c Campus
	err := row.Scan(&c.Id, &c.Name, &c.Slug, &c.Lat, &c.Lon, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (db *PgRepository) CreateCampus(params CreateCampusParams) (Campus, error) {
	row := db.conn.QueryRow(
		"INSERT INTO campuses (name, slug, lat, lon, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING "+campusColumns,
		params.Name,
		params.Slug,
		params.Lat,
		params.Lon,
		time.Now().UTC(),
	)

	return scanCampus(row)
}

func (db *PgRepository) UpdateCampus(params UpdateCampusParams) (Campus, error) {
	row := db.conn.QueryRow(
		"UPDATE campuses SET name = $2, slug = $3, lat = $4, lon = $5, updated_at = $6 "+
			"WHERE id = $1 RETURNING "+campusColumns,
		params.CampusId,
		params.Name,
		params.Slug,
		params.Lat,
		params.Lon,
		time.Now().UTC(),
	)

	return scanCampus(row)
}

func (db *PgRepository) GetCampusById(campusId int) (Campus, error) {
	row := db.conn.QueryRow(
		"SELECT "+campusColumns+" FROM campuses WHERE id = $1 LIMIT 1",
		campusId,
	)

	return scanCampus(row)
}

func (db *PgRepository) DeleteCampus(campusId int) error {
	res, err := db.conn.Exec("DELETE FROM campuses WHERE id = $1", campusId)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) ListCampuses(p query.Params, f query.SlugFilter) ([]Campus, int, error) {
	b := &query.Builder{}
	b.Search(p.Search, "name", "slug")
	if f.Name != "" {
		b.Eq("name", f.Name)
	}
	if f.Slug != "" {
		b.Eq("slug", f.Slug)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM campuses %s", b.Clause())
	if err := db.conn.QueryRow(countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campuses: %w", err)
	}

	pageQuery := fmt.Sprintf(
		"SELECT "+campusColumns+" FROM campuses %s ORDER BY %s LIMIT %s OFFSET %s",
		b.Clause(), p.OrderBy(), b.Arg(p.Limit), b.Arg(p.Offset()),
	)

	rows, err := db.conn.Query(pageQuery, b.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campuses: %w", err)
	}
	defer rows.Close()

	var campuses = make([]Campus, 0, p.Limit)
	for rows.Next() {
		var c Campus
		if err := rows.Scan(&c.Id, &c.Name, &c.Slug, &c.Lat, &c.Lon, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan campus: %w", err)
		}

		campuses = append(campuses, c)
	}

	return campuses, total, rows.Err()
}
