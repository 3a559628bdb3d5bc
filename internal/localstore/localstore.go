// Package localstore is the device-local persistence layer. Collections
// that the application does not synchronize with the backend (notes,
// receipts, documents) are serialized whole as one JSON blob per key,
// the same way a browser keeps them in localStorage.
package localstore

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrKeyNotFound = errors.New("localstore: key not found")

type entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "local_entries" }

// Store is a key to JSON-blob store backed by a sqlite file. Writes
// replace the whole value for a key.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get unmarshals the blob stored under key into out. Returns
// ErrKeyNotFound when the key has never been written.
func (s *Store) Get(key string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e entry
	if err := s.db.Where("key = ?", key).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return err
	}
	return json.Unmarshal(e.Value, out)
}

// Set serializes value and replaces whatever was stored under key.
func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	e := entry{Key: key, Value: raw, UpdatedAt: time.Now()}
	return s.db.Save(&e).Error
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Where("key = ?", key).Delete(&entry{}).Error
}

// Close releases the underlying sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
