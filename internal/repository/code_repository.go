package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"qrlink/internal/models"
)

// CodeRepository defines the data access methods for code records.
type CodeRepository interface {
	Create(code *models.Code) error
	FindByToken(token string) (*models.Code, error)
	FindByID(id uint) (*models.Code, error)
	FindByOwner(ownerID string) ([]models.Code, error)
	FindAll() ([]models.Code, error)
	UpdateTarget(id uint, newURL string) (*models.Code, error)
}

// GormCodeRepository implements CodeRepository with GORM.
type GormCodeRepository struct {
	db *gorm.DB
}

// NewCodeRepository creates and returns a new GormCodeRepository.
func NewCodeRepository(db *gorm.DB) *GormCodeRepository {
	return &GormCodeRepository{db: db}
}

// Create inserts a new code record. The unique index on token backs up the
// service-level collision retry: a racing duplicate insert fails here.
func (r *GormCodeRepository) Create(code *models.Code) error {
	if err := r.db.Create(code).Error; err != nil {
		return fmt.Errorf("failed to create code: %w", err)
	}
	return nil
}

// FindByToken retrieves a code record by its redirect token.
// Returns gorm.ErrRecordNotFound when the token is unknown.
func (r *GormCodeRepository) FindByToken(token string) (*models.Code, error) {
	var code models.Code
	if err := r.db.Where("token = ?", token).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// FindByID retrieves a code record by its primary key.
func (r *GormCodeRepository) FindByID(id uint) (*models.Code, error) {
	var code models.Code
	if err := r.db.First(&code, id).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// FindByOwner retrieves every code record belonging to an owner.
func (r *GormCodeRepository) FindByOwner(ownerID string) ([]models.Code, error) {
	var codes []models.Code
	if err := r.db.Where("owner_id = ?", ownerID).Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve codes for owner %s: %w", ownerID, err)
	}
	return codes, nil
}

// FindAll retrieves all code records. Used by the target URL monitor.
func (r *GormCodeRepository) FindAll() ([]models.Code, error) {
	var codes []models.Code
	if err := r.db.Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all codes: %w", err)
	}
	return codes, nil
}

// UpdateTarget rewrites the target URL and stamps updated_at inside a
// transaction. The row is re-read under the transaction so two concurrent
// updates of the same record serialize instead of overwriting each other.
func (r *GormCodeRepository) UpdateTarget(id uint, newURL string) (*models.Code, error) {
	var code models.Code
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&code, id).Error; err != nil {
			return err
		}
		now := time.Now()
		code.TargetURL = newURL
		code.LastUpdatedAt = &now
		return tx.Save(&code).Error
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}
