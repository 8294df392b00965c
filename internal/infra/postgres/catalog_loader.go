package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"timer-trivia-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads the question catalog JSONB from Postgres. The catalog
// table holds one row per named catalog; this service reads the default one.
type CatalogLoader struct {
	pool *pgxpool.Pool
	name string
}

// DefaultCatalogName is the row read when no name is configured.
const DefaultCatalogName = "default"

func NewCatalogLoader(pool *pgxpool.Pool, name string) *CatalogLoader {
	if name == "" {
		name = DefaultCatalogName
	}
	return &CatalogLoader{pool: pool, name: name}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE name=$1`, l.name).Scan(&raw)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog %q: %w", l.name, err)
	}
	var cat domain.Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog %q: %w", l.name, err)
	}
	if len(cat.Questions) == 0 {
		return domain.Catalog{}, domain.ErrCatalogNotFound
	}
	return cat, nil
}
