// Package geolog records where users search for stations. It is a best-effort
// sidecar: radius queries log their center point and the service can report
// popular search areas, but a logging failure never fails the search itself.
package geolog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	decimalBase            = 10
	precisionDecimalPlaces = 2
	clusterDistanceDegrees = 0.01 // roughly 1km
	busyTimeoutMs          = 10000
)

// Log stores search locations in a local SQLite database.
type Log struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the search log database at dbPath.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Log, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error setting journal mode: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("search log ready", "path", dbPath)

	return &Log{db: db, log: logger}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS search_locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		radius_km REAL NOT NULL,
		search_count INTEGER NOT NULL DEFAULT 1,
		last_search TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_search_locations_coordinates ON search_locations (latitude, longitude);
	`

	_, err := db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating search_locations table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// LogSearch records a radius query center. Coordinates are rounded to two
// decimal places before storage so nearby searches aggregate into one row
// and exact user positions are never kept.
func (l *Log) LogSearch(ctx context.Context, latitude, longitude, radiusKm float64) error {
	lat, lng := reducePrecision(latitude, longitude, precisionDecimalPlaces)

	// A single upsert keeps concurrent searches at the same rounded
	// point on one row.
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO search_locations (latitude, longitude, radius_km)
		VALUES (?, ?, ?)
		ON CONFLICT(latitude, longitude) DO UPDATE SET
			search_count = search_count + 1,
			last_search = CURRENT_TIMESTAMP,
			radius_km = excluded.radius_km
	`, lat, lng, radiusKm)
	if err != nil {
		return fmt.Errorf("error logging search location: %w", err)
	}

	l.log.Debug("search location logged", "latitude", lat, "longitude", lng)
	return nil
}

// SearchLocation is a row in the search_locations table.
type SearchLocation struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	RadiusKm    float64
	SearchCount int64
	LastSearch  time.Time
}

// Locations retrieves logged search locations ordered by popularity.
// limit: maximum number of rows to return (0 for all).
func (l *Log) Locations(ctx context.Context, limit int) ([]SearchLocation, error) {
	query := `SELECT id, latitude, longitude, radius_km, search_count, last_search
			  FROM search_locations
			  ORDER BY search_count DESC `

	if limit > 0 {
		query += fmt.Sprintf("LIMIT %d", limit)
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving search locations: %w", err)
	}
	defer rows.Close()

	var locations []SearchLocation
	for rows.Next() {
		var loc SearchLocation
		if err := rows.Scan(
			&loc.ID,
			&loc.Latitude,
			&loc.Longitude,
			&loc.RadiusKm,
			&loc.SearchCount,
			&loc.LastSearch,
		); err != nil {
			return nil, fmt.Errorf("error scanning search location: %w", err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	return locations, nil
}

// PopularLocation represents a clustered area of searches with its popularity.
type PopularLocation struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
	SearchCount int64   `json:"weight"`
	RadiusKm    float64 `json:"radius"`
}

// PopularLocations clusters logged searches into areas, most searched first.
func (l *Log) PopularLocations(ctx context.Context) ([]PopularLocation, error) {
	locations, err := l.Locations(ctx, 0)
	if err != nil {
		return nil, err
	}

	processed := make(map[int64]bool)

	var popular []PopularLocation
	for i, loc := range locations {
		if processed[loc.ID] {
			continue
		}
		processed[loc.ID] = true

		cluster := PopularLocation{
			Latitude:    loc.Latitude,
			Longitude:   loc.Longitude,
			SearchCount: loc.SearchCount,
			RadiusKm:    loc.RadiusKm,
		}

		for j, other := range locations {
			if i == j || processed[other.ID] {
				continue
			}

			distance := math.Hypot(loc.Latitude-other.Latitude, loc.Longitude-other.Longitude)
			if distance > clusterDistanceDegrees {
				continue
			}
			processed[other.ID] = true

			// Weighted average keeps the cluster centered on the busy spot.
			totalWeight := cluster.SearchCount + other.SearchCount
			cluster.Latitude = (cluster.Latitude*float64(cluster.SearchCount) +
				other.Latitude*float64(other.SearchCount)) / float64(totalWeight)
			cluster.Longitude = (cluster.Longitude*float64(cluster.SearchCount) +
				other.Longitude*float64(other.SearchCount)) / float64(totalWeight)

			cluster.SearchCount += other.SearchCount
			if other.RadiusKm > cluster.RadiusKm {
				cluster.RadiusKm = other.RadiusKm
			}
		}

		popular = append(popular, cluster)
	}

	sort.Slice(popular, func(i, j int) bool {
		return popular[i].SearchCount > popular[j].SearchCount
	})

	return popular, nil
}

func reducePrecision(lat, lng float64, decimalPlaces int) (roundedLat, roundedLng float64) {
	factor := math.Pow(decimalBase, float64(decimalPlaces))
	roundedLat = math.Round(lat*factor) / factor
	roundedLng = math.Round(lng*factor) / factor
	return
}
