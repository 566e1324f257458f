package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Ingredient is a row of the ingredient inventory. Quantities are stored in
// Unit, which is kilograms for everything the order pipeline weighs.
type Ingredient struct {
	gorm.Model
	IngredientID   string     `gorm:"column:ingredient_id;unique_index" json:"ingredient_id"`
	Name           string     `gorm:"column:ingredient_name;index" json:"name"`
	Quantity       float64    `gorm:"column:quantity" json:"quantity"`
	Unit           string     `gorm:"column:unit_of_measurement" json:"unit"`
	ExpirationDate *time.Time `gorm:"column:expiration_date" json:"expiration_date,omitempty"`
}

// TableName sets the table name for Ingredient
func (Ingredient) TableName() string {
	return "ingredients"
}

// InventoryUnit represents the unit of measurement for an inventory item
type InventoryUnit string

const (
	UnitKilogram InventoryUnit = "kg"
	UnitLiter    InventoryUnit = "liters"
	UnitPiece    InventoryUnit = "pieces"
)
