package repository

import (
	"fmt"

	"gorm.io/gorm"

	"qrlink/internal/models"
)

// VisitRepository defines the data access methods for visit events.
// Visits are append-only: there are deliberately no update or delete methods.
type VisitRepository interface {
	Create(visit *models.Visit) error
	FindByCodeID(codeID uint) ([]models.Visit, error)
	CountByCodeID(codeID uint) (int, error)
}

// GormVisitRepository implements VisitRepository with GORM.
type GormVisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository creates and returns a new GormVisitRepository.
func NewVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

// Create appends a new visit event.
func (r *GormVisitRepository) Create(visit *models.Visit) error {
	if err := r.db.Create(visit).Error; err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// FindByCodeID retrieves the full visit history of a code.
func (r *GormVisitRepository) FindByCodeID(codeID uint) ([]models.Visit, error) {
	var visits []models.Visit
	if err := r.db.Where("code_id = ?", codeID).Order("id").Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve visits for code ID %d: %w", codeID, err)
	}
	return visits, nil
}

// CountByCodeID counts the total visits recorded for a code.
func (r *GormVisitRepository) CountByCodeID(codeID uint) (int, error) {
	var count int64
	if err := r.db.Model(&models.Visit{}).Where("code_id = ?", codeID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count visits for code ID %d: %w", codeID, err)
	}
	return int(count), nil
}
