package database

import (
	"fmt"
	"time"
)

const reviewColumns = "id, review, reviewer_id, reviewee_id, rating, created_at, updated_at"

// ratingCounters maps a rating value to the aggregate column it
// increments on the reviewee.
var ratingCounters = map[string]string{
	"positive": "positive_count",
	"neutral":  "neutral_count",
	"negative": "negative_count",
}

func (db *PgRepository) CreateReview(params CreateReviewParams) (Review, error) {
	counter, ok := ratingCounters[params.Rating]
	if !ok {
		return Review{}, fmt.Errorf("unknown rating %q", params.Rating)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return Review{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	row := tx.QueryRow(
		"INSERT INTO reviews (review, reviewer_id, reviewee_id, rating, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $5) RETURNING "+reviewColumns,
		params.Review,
		params.ReviewerId,
		params.RevieweeId,
		params.Rating,
		time.Now().UTC(),
	)

	var review Review
	err = row.Scan(
		&review.Id,
		&review.Review,
		&review.ReviewerId,
		&review.RevieweeId,
		&review.Rating,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return Review{}, err
	}

	_, err = tx.Exec(
		fmt.Sprintf("UPDATE users SET %s = %s + 1, updated_at = $2 WHERE id = $1", counter, counter),
		params.RevieweeId,
		time.Now().UTC(),
	)
	if err != nil {
		return Review{}, err
	}

	if err = tx.Commit(); err != nil {
		return Review{}, err
	}

	return review, nil
}

func (db *PgRepository) ListReviewsForUser(revieweeId int) ([]Review, error) {
	rows, err := db.conn.Query(
		"SELECT "+reviewColumns+" FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC, id ASC",
		revieweeId,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews = make([]Review, 0)
	for rows.Next() {
		var r Review
		if err := rows.Scan(
			&r.Id,
			&r.Review,
			&r.ReviewerId,
			&r.RevieweeId,
			&r.Rating,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}

		reviews = append(reviews, r)
	}

	return reviews, rows.Err()
}
