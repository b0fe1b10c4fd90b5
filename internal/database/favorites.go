package database

import (
	"database/sql"
	"fmt"
	"time"
)

func (db *PgRepository) CreateFavorite(userId, listingId int) (Favorite, error) {
	row := db.conn.QueryRow(
		"INSERT INTO favorites (user_id, listing_id, created_at) "+
			"VALUES ($1, $2, $3) RETURNING id, user_id, listing_id, created_at",
		userId,
		listingId,
		time.Now().UTC(),
	)

	var fav Favorite
	err := row.Scan(&fav.Id, &fav.UserId, &fav.ListingId, &fav.CreatedAt)

	return fav, err
}

func (db *PgRepository) DeleteFavorite(userId, listingId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2",
		userId,
		listingId,
	)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (db *PgRepository) ListFavoriteListings(userId int) ([]Listing, error) {
	rows, err := db.conn.Query(
		"SELECT l.id, l.external_id, l.title, l.description, l.condition, l.price, l.image_url, "+
			"l.user_id, l.category_id, l.campus_id, l.is_available, l.created_at, l.updated_at "+
			"FROM favorites f JOIN listings l ON l.id = f.listing_id "+
			"WHERE f.user_id = $1 ORDER BY f.created_at DESC, f.id ASC",
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var listings = make([]Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite listing: %w", err)
		}

		listings = append(listings, l)
	}

	return listings, rows.Err()
}
