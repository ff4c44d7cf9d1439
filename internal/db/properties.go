package db

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"lightbnb/internal/models"
)

// GetAllProperties runs the property search built from opts.
func (db *DB) GetAllProperties(ctx context.Context, opts SearchOptions, limit int) ([]models.PropertyWithRating, error) {
	query, args := BuildPropertySearch(opts, limit)
	db.log.Debug("property search", zap.String("query", query), zap.Any("args", args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.fail("GetAllProperties", err)
	}
	defer rows.Close()

	properties := []models.PropertyWithRating{}
	for rows.Next() {
		var (
			p      models.PropertyWithRating
			rating sql.NullFloat64
		)
		if err := rows.Scan(append(propertyDest(&p.Property), &rating)...); err != nil {
			return nil, db.fail("GetAllProperties", err)
		}
		p.AverageRating = nullableFloat(rating)
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.fail("GetAllProperties", err)
	}
	return properties, nil
}

// AddProperty inserts a listing and returns it with its generated id.
func (db *DB) AddProperty(ctx context.Context, p *models.Property) (*models.Property, error) {
	query := `
	INSERT INTO properties (owner_id, title, description, thumbnail_photo_url,
		cover_photo_url, cost_per_night, parking_spaces, number_of_bathrooms,
		number_of_bedrooms, country, street, city, province, post_code, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id, owner_id, title, COALESCE(description, ''), thumbnail_photo_url,
		cover_photo_url, cost_per_night, parking_spaces, number_of_bathrooms,
		number_of_bedrooms, country, street, city, province, post_code, active`

	created := &models.Property{}
	err := db.QueryRowContext(ctx, query,
		p.OwnerID, p.Title, p.Description, p.ThumbnailPhotoURL,
		p.CoverPhotoURL, p.CostPerNight, p.ParkingSpaces, p.NumberOfBathrooms,
		p.NumberOfBedrooms, p.Country, p.Street, p.City, p.Province, p.PostCode, p.Active,
	).Scan(propertyDest(created)...)
	if err != nil {
		return nil, db.fail("AddProperty", err)
	}
	return created, nil
}
