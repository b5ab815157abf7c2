// Package localstore is durable string key/value storage for the client,
// the equivalent of a browser's localStorage.
package localstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/db"
)

type Storage interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

type entry struct {
	Key       string `gorm:"column:item_key;primaryKey"`
	Value     string `gorm:"column:item_value;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "local_storage" }

type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the storage file at path.
func OpenSQLite(path string) (*SQLite, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	gdb, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&entry{}); err != nil {
		_ = db.Close(gdb)
		return nil, err
	}
	return &SQLite{db: gdb}, nil
}

func (s *SQLite) GetItem(key string) (string, bool, error) {
	var e entry
	err := s.db.Where("item_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *SQLite) SetItem(key, value string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value", "updated_at"}),
	}).Create(&entry{Key: key, Value: value}).Error
}

func (s *SQLite) RemoveItem(key string) error {
	return s.db.Where("item_key = ?", key).Delete(&entry{}).Error
}

func (s *SQLite) Close() error {
	return db.Close(s.db)
}

type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
