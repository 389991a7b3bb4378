// internal/infrastructure/database/postgres/storage.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntry is one key/value pair of session storage
type StorageEntry struct {
	Key       string     `gorm:"primaryKey;size:255" json:"key"`
	Value     []byte     `gorm:"not null" json:"value"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName overrides the table name
func (StorageEntry) TableName() string {
	return "storage_entries"
}

// Storage implements storage.Storage on the storage_entries table
type Storage struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewStorage creates a table-backed storage. A zero ttl keeps entries forever.
func NewStorage(db *gorm.DB, ttl time.Duration) *Storage {
	return &Storage{
		db:  db,
		ttl: ttl,
	}
}

// Get returns the value under key, ignoring expired entries
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var entry StorageEntry
	err := s.db.WithContext(ctx).
		Where("key = ? AND (expires_at IS NULL OR expires_at > ?)", key, time.Now().UTC()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage entry: %w", err)
	}
	return entry.Value, nil
}

// Set upserts the value under key
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	entry := StorageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	if s.ttl > 0 {
		expiresAt := entry.UpdatedAt.Add(s.ttl)
		entry.ExpiresAt = &expiresAt
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write storage entry: %w", err)
	}
	return nil
}

// Delete removes the entry under key
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&StorageEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete storage entry: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PurgeExpired deletes entries whose expiration has passed
func (s *Storage) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now().UTC()).
		Delete(&StorageEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge storage entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
