package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"gorm.io/gorm"
)

// RegistryRepository implements domain.RegistryRepository using gorm.
type RegistryRepository struct {
	db *gorm.DB
}

// NewRegistryRepository creates a new registry repository.
func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

func (r *RegistryRepository) Create(ctx context.Context, reg *domain.GameRegistry) error {
	if err := r.db.WithContext(ctx).Create(reg).Error; err != nil {
		return fmt.Errorf("failed to create registry %s: %w", reg.Name, err)
	}
	return nil
}

// Update replaces the registry row and its full roster.
func (r *RegistryRepository) Update(ctx context.Context, reg *domain.GameRegistry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Players").Save(reg).Error; err != nil {
			return fmt.Errorf("failed to update registry %s: %w", reg.ID, err)
		}
		if err := tx.Where("registry_id = ?", reg.ID).Delete(&domain.RegistryPlayer{}).Error; err != nil {
			return fmt.Errorf("failed to clear roster of registry %s: %w", reg.ID, err)
		}
		if len(reg.Players) == 0 {
			return nil
		}
		if err := tx.Create(&reg.Players).Error; err != nil {
			return fmt.Errorf("failed to save roster of registry %s: %w", reg.ID, err)
		}
		return nil
	})
}

func (r *RegistryRepository) GetByID(ctx context.Context, id string) (*domain.GameRegistry, error) {
	var reg domain.GameRegistry
	err := r.db.WithContext(ctx).Preload("Players").First(&reg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("registry %s not found", id)
		}
		return nil, fmt.Errorf("failed to load registry %s: %w", id, err)
	}
	return &reg, nil
}

func (r *RegistryRepository) GetByName(ctx context.Context, name string) (*domain.GameRegistry, error) {
	var reg domain.GameRegistry
	err := r.db.WithContext(ctx).Preload("Players").First(&reg, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("registry %s not found", name)
		}
		return nil, fmt.Errorf("failed to load registry %s: %w", name, err)
	}
	return &reg, nil
}

func (r *RegistryRepository) List(ctx context.Context) ([]*domain.GameRegistry, error) {
	var regs []*domain.GameRegistry
	if err := r.db.WithContext(ctx).Preload("Players").Order("created_at").Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("failed to list registries: %w", err)
	}
	return regs, nil
}

func (r *RegistryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registry_id = ?", id).Delete(&domain.RegistryPlayer{}).Error; err != nil {
			return fmt.Errorf("failed to delete roster of registry %s: %w", id, err)
		}
		if err := tx.Delete(&domain.GameRegistry{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete registry %s: %w", id, err)
		}
		return nil
	})
}
