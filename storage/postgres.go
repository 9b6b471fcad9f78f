package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"airbnb-harvester/models"
)

// PostgresWriter mirrors committed entries into PostgreSQL, keyed by link.
// It is an optional backend alongside the file store; a revisit updates
// the existing row in place.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection, runs schema migration, and
// returns a ready-to-use writer.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			link             TEXT PRIMARY KEY,
			name             TEXT NOT NULL DEFAULT '',
			bedrooms         TEXT NOT NULL DEFAULT '',
			beds             TEXT NOT NULL DEFAULT '',
			bathrooms        TEXT NOT NULL DEFAULT '',
			guest_limit      TEXT NOT NULL DEFAULT '',
			stars            TEXT NOT NULL DEFAULT '',
			price_per_night  TEXT NOT NULL DEFAULT '',
			location_rating  TEXT NOT NULL DEFAULT '',
			source           TEXT NOT NULL DEFAULT '',
			tv               TEXT NOT NULL DEFAULT '',
			pool             TEXT NOT NULL DEFAULT '',
			jacuzzi          TEXT NOT NULL DEFAULT '',
			historical_house TEXT NOT NULL DEFAULT '',
			billiards_table  TEXT NOT NULL DEFAULT '',
			large_yard       TEXT NOT NULL DEFAULT '',
			balcony          TEXT NOT NULL DEFAULT '',
			laundry          TEXT NOT NULL DEFAULT '',
			home_gym         TEXT NOT NULL DEFAULT '',
			guest_favorite   TEXT NOT NULL DEFAULT '',
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_stars  ON listings(stars);
		CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);
	`)
	return err
}

// Upsert writes one merged entry; the file store has already applied the
// fill-only-unknown semantics, so the row is replaced wholesale.
func (pw *PostgresWriter) Upsert(e *models.StoreEntry) error {
	_, err := pw.db.Exec(`
		INSERT INTO listings (
			link, name, bedrooms, beds, bathrooms, guest_limit, stars,
			price_per_night, location_rating, source, tv, pool, jacuzzi,
			historical_house, billiards_table, large_yard, balcony, laundry,
			home_gym, guest_favorite, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,NOW()
		)
		ON CONFLICT (link) DO UPDATE SET
			name = EXCLUDED.name,
			bedrooms = EXCLUDED.bedrooms,
			beds = EXCLUDED.beds,
			bathrooms = EXCLUDED.bathrooms,
			guest_limit = EXCLUDED.guest_limit,
			stars = EXCLUDED.stars,
			price_per_night = EXCLUDED.price_per_night,
			location_rating = EXCLUDED.location_rating,
			source = EXCLUDED.source,
			tv = EXCLUDED.tv,
			pool = EXCLUDED.pool,
			jacuzzi = EXCLUDED.jacuzzi,
			historical_house = EXCLUDED.historical_house,
			billiards_table = EXCLUDED.billiards_table,
			large_yard = EXCLUDED.large_yard,
			balcony = EXCLUDED.balcony,
			laundry = EXCLUDED.laundry,
			home_gym = EXCLUDED.home_gym,
			guest_favorite = EXCLUDED.guest_favorite,
			updated_at = NOW()
	`,
		e.Link, e.Name, e.Bedrooms, e.Beds, e.Bathrooms, e.GuestLimit, e.Stars,
		e.PricePerNight, e.LocationRating, e.Source, string(e.TV), string(e.Pool),
		string(e.Jacuzzi), string(e.HistoricalHouse), string(e.Billiards),
		string(e.LargeYard), string(e.Balcony), string(e.Laundry),
		string(e.HomeGym), string(e.GuestFavorite),
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", e.Link, err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
