package storage

import (
	"context"

	"gorm.io/gorm"
)

// Postgres stores values in the kv_store table created by db migrations.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var rows []struct {
		Value string
	}
	err := p.db.WithContext(ctx).Raw(`
		SELECT value
		FROM kv_store
		WHERE key = ?
		LIMIT 1
	`, key).Scan(&rows).Error
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	return p.db.WithContext(ctx).Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value).Error
}

func (p *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := p.db.WithContext(ctx).Raw(`
		SELECT key
		FROM kv_store
		WHERE starts_with(key, ?)
		ORDER BY key ASC
	`, prefix).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
