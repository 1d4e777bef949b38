package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"property-etl/internal/models"
	"property-etl/internal/transform"
)

// Store is the load-planner boundary: both database backends implement it.
type Store interface {
	InitSchema() error
	SaveBundle(b transform.Bundle) error
	ListKeys() ([]string, error)
	DeleteProperty(key string) error
	Close() error
}

// GormStore persists bundles into MySQL through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(host, port, user, password, dbname string) (*GormStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

// NewGormStoreFromDB wraps an existing gorm.DB instance.
func NewGormStoreFromDB(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB returns the underlying gorm.DB instance.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates the six tables with GORM AutoMigrate. Parent first so
// the child foreign keys resolve.
func (s *GormStore) InitSchema() error {
	return s.db.AutoMigrate(
		&models.Property{},
		&models.Leads{},
		&models.Valuation{},
		&models.Rehab{},
		&models.Hoa{},
		&models.Taxes{},
	)
}

// SaveBundle writes one property and all of its children atomically. The
// parent is upserted (preserving the original created_at); every child
// table is replaced with the newly computed row set, so a shrinking
// scenario count drops its stale rows.
func (s *GormStore) SaveBundle(b transform.Bundle) error {
	key := b.Property.PropertyKey

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Property
		result := tx.Where("property_key = ?", key).First(&existing)

		switch {
		case result.Error == gorm.ErrRecordNotFound:
			if err := tx.Create(&b.Property).Error; err != nil {
				return err
			}
		case result.Error != nil:
			return result.Error
		default:
			b.Property.CreatedAt = existing.CreatedAt
			if err := tx.Save(&b.Property).Error; err != nil {
				return err
			}
		}

		if err := replaceLeads(tx, key, b.Leads); err != nil {
			return err
		}
		if err := replaceValuations(tx, key, b.Valuations); err != nil {
			return err
		}
		if err := replaceRehabs(tx, key, b.Rehabs); err != nil {
			return err
		}
		if err := replaceHoas(tx, key, b.Hoas); err != nil {
			return err
		}
		return replaceTaxes(tx, key, b.Taxes)
	})

	return wrapLoadError(key, err)
}

// ListKeys returns every property key currently stored.
func (s *GormStore) ListKeys() ([]string, error) {
	var keys []string
	if err := s.db.Model(&models.Property{}).Pluck("property_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteProperty removes one parent row; the cascade constraints take the
// child rows with it.
func (s *GormStore) DeleteProperty(key string) error {
	err := s.db.Where("property_key = ?", key).Delete(&models.Property{}).Error
	return wrapLoadError(key, err)
}

func replaceLeads(tx *gorm.DB, key string, leads *models.Leads) error {
	if err := tx.Where("property_key = ?", key).Delete(&models.Leads{}).Error; err != nil {
		return err
	}
	if leads == nil {
		return nil
	}
	return tx.Create(leads).Error
}

func replaceTaxes(tx *gorm.DB, key string, taxes *models.Taxes) error {
	if err := tx.Where("property_key = ?", key).Delete(&models.Taxes{}).Error; err != nil {
		return err
	}
	if taxes == nil {
		return nil
	}
	return tx.Create(taxes).Error
}

func replaceValuations(tx *gorm.DB, key string, rows []models.Valuation) error {
	if err := tx.Where("property_key = ?", key).Delete(&models.Valuation{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func replaceRehabs(tx *gorm.DB, key string, rows []models.Rehab) error {
	if err := tx.Where("property_key = ?", key).Delete(&models.Rehab{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func replaceHoas(tx *gorm.DB, key string, rows []models.Hoa) error {
	if err := tx.Where("property_key = ?", key).Delete(&models.Hoa{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
