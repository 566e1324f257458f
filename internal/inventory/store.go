package inventory

import (
	"context"
	"fmt"

	"orderintake/internal/models"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

// StoreSource reads the ingredients table through gorm.
type StoreSource struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStoreSource creates a source over db
func NewStoreSource(db *gorm.DB, logger *zap.Logger) *StoreSource {
	return &StoreSource{db: db, logger: logger}
}

// Name implements Source
func (s *StoreSource) Name() string { return "store" }

// Lookup implements Source. Quantities of zero or less are unavailable.
func (s *StoreSource) Lookup(ctx context.Context, names []string) Report {
	r := newReport()
	for _, name := range names {
		var item models.Ingredient
		err := s.db.Where("ingredient_name = ?", name).First(&item).Error
		switch {
		case gorm.IsRecordNotFoundError(err):
			s.logger.Warn("ingredient not found", zap.String("ingredient", name))
		case err != nil:
			s.logger.Error("ingredient lookup failed", zap.String("ingredient", name), zap.Error(err))
			r.Stock[name] = Stock{}
			r.diag(fmt.Sprintf("Error looking up %s: %v", name, err))
		case item.Quantity <= 0:
			s.logger.Warn("ingredient out of stock", zap.String("ingredient", name))
			r.Stock[name] = Stock{}
		default:
			r.Stock[name] = Stock{Quantity: ptr(item.Quantity)}
		}
	}
	return r
}

// List returns every ingredient ordered by name.
func (s *StoreSource) List(ctx context.Context) ([]models.Ingredient, error) {
	var items []models.Ingredient
	if err := s.db.Order("ingredient_name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return items, nil
}

// Upsert sets the quantity (and unit, when given) of the named ingredient,
// creating the row if needed.
func (s *StoreSource) Upsert(ctx context.Context, name string, quantity float64, unit string) (*models.Ingredient, error) {
	var item models.Ingredient
	err := s.db.Where("ingredient_name = ?", name).First(&item).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		if unit == "" {
			unit = string(models.UnitKilogram)
		}
		item = models.Ingredient{
			IngredientID: name,
			Name:         name,
			Quantity:     quantity,
			Unit:         unit,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create ingredient %s: %w", name, err)
		}
		return &item, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load ingredient %s: %w", name, err)
	}

	item.Quantity = quantity
	if unit != "" {
		item.Unit = unit
	}
	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update ingredient %s: %w", name, err)
	}
	return &item, nil
}
