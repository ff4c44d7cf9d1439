package db

import (
	"context"
	"database/sql"

	"lightbnb/internal/models"
)

// GetAllReservations returns the guest's reservations ordered by start date,
// each joined with its property and the property's average rating.
func (db *DB) GetAllReservations(ctx context.Context, guestID int64, limit int) ([]models.ReservationDetail, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
	SELECT reservations.id, reservations.guest_id, reservations.property_id,
		reservations.start_date, reservations.end_date,
		` + propertyColumns + `,
		AVG(property_reviews.rating) AS average_rating
	FROM reservations
	JOIN properties ON reservations.property_id = properties.id
	LEFT JOIN property_reviews ON properties.id = property_reviews.property_id
	WHERE reservations.guest_id = $1
	GROUP BY reservations.id, properties.id
	ORDER BY reservations.start_date
	LIMIT $2`

	rows, err := db.QueryContext(ctx, query, guestID, limit)
	if err != nil {
		return nil, db.fail("GetAllReservations", err)
	}
	defer rows.Close()

	reservations := []models.ReservationDetail{}
	for rows.Next() {
		var (
			r      models.ReservationDetail
			rating sql.NullFloat64
		)
		dest := []any{&r.ID, &r.GuestID, &r.PropertyID, &r.StartDate, &r.EndDate}
		dest = append(dest, propertyDest(&r.Property)...)
		dest = append(dest, &rating)
		if err := rows.Scan(dest...); err != nil {
			return nil, db.fail("GetAllReservations", err)
		}
		r.AverageRating = nullableFloat(rating)
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, db.fail("GetAllReservations", err)
	}
	return reservations, nil
}
