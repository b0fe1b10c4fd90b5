package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/campusdeals/api/internal/query"
)

const listingColumns = "id, external_id, title, description, condition, price, image_url, user_id, category_id, campus_id, is_available, created_at, updated_at"

func scanListingRow(row *sql.Row) (Listing, error) {
	var l Listing
	err := row.Scan(
		&l.Id,
		&l.ExternalId,
		&l.Title,
		&l.Description,
		&l.Condition,
		&l.Price,
		&l.ImageUrl,
		&l.UserId,
		&l.CategoryId,
		&l.CampusId,
		&l.IsAvailable,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func scanListing(rows *sql.Rows) (Listing, error) {
	var l Listing
	err := rows.Scan(
		&l.Id,
		&l.ExternalId,
		&l.Title,
		&l.Description,
		&l.Condition,
		&l.Price,
		&l.ImageUrl,
		&l.UserId,
		&l.CategoryId,
		&l.CampusId,
		&l.IsAvailable,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func (db *PgRepository) CreateListing(params CreateListingParams) (Listing, error) {
	row := db.conn.QueryRow(
		"INSERT INTO listings (external_id, title, description, condition, price, image_url, user_id, category_id, campus_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $10) RETURNING "+listingColumns,
		params.ExternalId,
		params.Title,
		params.Description,
		params.Condition,
		params.Price,
		params.ImageUrl,
		params.UserId,
		params.CategoryId,
		params.CampusId,
		time.Now().UTC(),
	)

	return scanListingRow(row)
}

func (db *PgRepository) UpdateListing(params UpdateListingParams) (Listing, error) {
	row := db.conn.QueryRow(
		"UPDATE listings SET title = $2, description = $3, condition = $4, price = $5, "+
			"image_url = NULLIF($6, ''), category_id = $7, campus_id = $8, is_available = $9, updated_at = $10 "+
			"WHERE id = $1 RETURNING "+listingColumns,
		params.ListingId,
		params.Title,
		params.Description,
		params.Condition,
		params.Price,
		params.ImageUrl,
		params.CategoryId,
		params.CampusId,
		params.IsAvailable,
		time.Now().UTC(),
	)

	return scanListingRow(row)
}

func (db *PgRepository) GetListingById(listingId int) (Listing, error) {
	row := db.conn.QueryRow(
		"SELECT "+listingColumns+" FROM listings WHERE id = $1 LIMIT 1",
		listingId,
	)

	return scanListingRow(row)
}

func (db *PgRepository) GetListingByExternalId(externalId string) (Listing, error) {
	row := db.conn.QueryRow(
		"SELECT "+listingColumns+" FROM listings WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	return scanListingRow(row)
}

func (db *PgRepository) DeleteListing(listingId int) error {
	res, err := db.conn.Exec("DELETE FROM listings WHERE id = $1", listingId)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) ListListings(p query.Params, f query.ListingFilter) ([]Listing, int, error) {
	b := &query.Builder{}
	b.Search(p.Search, "title", "description")
	if f.CategoryId != nil {
		b.Eq("category_id", *f.CategoryId)
	}
	if f.CampusId != nil {
		b.Eq("campus_id", *f.CampusId)
	}
	if f.Condition != "" {
		b.Eq("condition", f.Condition)
	}
	// Unfiltered browsing only shows available listings.
	if f.IsAvailable != nil {
		b.Eq("is_available", *f.IsAvailable)
	} else {
		b.Eq("is_available", true)
	}
	if f.PriceMin != nil {
		b.Gte("price", *f.PriceMin)
	}
	if f.PriceMax != nil {
		b.Lte("price", *f.PriceMax)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings %s", b.Clause())
	if err := db.conn.QueryRow(countQuery, b.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	pageQuery := fmt.Sprintf(
		"SELECT "+listingColumns+" FROM listings %s ORDER BY %s LIMIT %s OFFSET %s",
		b.Clause(), p.OrderBy(), b.Arg(p.Limit), b.Arg(p.Offset()),
	)

	rows, err := db.conn.Query(pageQuery, b.Args()...)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings = make([]Listing, 0, p.Limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}

		listings = append(listings, l)
	}

	return listings, total, rows.Err()
}
