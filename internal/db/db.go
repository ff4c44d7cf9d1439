package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"lightbnb/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

const uniqueViolation = "23505"

type DB struct {
	*sql.DB
	log *zap.Logger
}

// Open connects with one of the registered drivers (postgres, pgx, sqlite3)
// and verifies the connection.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*DB, error) {
	if driver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{DB: db, log: logger.Named("db")}, nil
}

// sqliteDSN turns on case sensitive LIKE so SQLite matches Postgres.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_cslike=") || strings.Contains(dsn, "_case_sensitive_like=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_cslike=true"
	}
	return dsn + "?_cslike=true"
}

// fail logs a store failure for op and returns it wrapped.
func (db *DB) fail(op string, err error) error {
	db.log.Error("query failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func propertyDest(p *models.Property) []any {
	return []any{
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.ThumbnailPhotoURL,
		&p.CoverPhotoURL, &p.CostPerNight, &p.ParkingSpaces,
		&p.NumberOfBathrooms, &p.NumberOfBedrooms, &p.Country,
		&p.Street, &p.City, &p.Province, &p.PostCode, &p.Active,
	}
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
