package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"orderintake/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jinzhu/gorm"
)

type seedItem struct {
	id       string
	name     string
	quantity float64
	unit     models.InventoryUnit
	expires  string
}

var seedItems = []seedItem{
	{"1", "apple", 50, models.UnitKilogram, "2024-12-01"},
	{"2", "sugar", 100, models.UnitKilogram, "2025-01-01"},
	{"3", "water", 200, models.UnitLiter, "2025-12-31"},
	{"4", "flour", 75, models.UnitKilogram, "2025-02-28"},
	{"5", "salt", 60, models.UnitKilogram, "2026-01-01"},
	{"6", "egg", 300, models.UnitPiece, "2024-09-25"},
	{"7", "milk", 100, models.UnitLiter, "2024-10-10"},
	{"8", "butter", 50, models.UnitKilogram, "2024-11-01"},
	{"9", "chicken Breast", 40, models.UnitKilogram, "2024-10-20"},
	{"10", "rice", 90, models.UnitKilogram, "2025-03-15"},
	{"11", "carrot", 60, models.UnitKilogram, "2024-09-30"},
	{"12", "tomato", 70, models.UnitKilogram, "2024-10-05"},
	{"13", "potato", 100, models.UnitKilogram, "2024-11-10"},
	{"14", "onion", 50, models.UnitKilogram, "2024-10-15"},
	{"15", "broccoli", 20, models.UnitKilogram, "2024-10-01"},
	{"16", "cheese", 30, models.UnitKilogram, "2024-12-05"},
	{"17", "pasta", 80, models.UnitKilogram, "2025-01-20"},
	{"18", "orange", 50, models.UnitKilogram, "2024-11-15"},
	{"19", "banana", 70, models.UnitKilogram, "2024-10-10"},
	{"20", "strawberry", 25, models.UnitKilogram, "2024-09-25"},
	{"21", "dough", 25, models.UnitKilogram, "2024-09-25"},
	{"22", "tomato sauce", 25, models.UnitKilogram, "2024-09-25"},
}

// SeedIngredients returns the starter inventory.
func SeedIngredients() []models.Ingredient {
	out := make([]models.Ingredient, 0, len(seedItems))
	for _, s := range seedItems {
		ing := models.Ingredient{
			IngredientID: s.id,
			Name:         s.name,
			Quantity:     s.quantity,
			Unit:         string(s.unit),
		}
		if t, err := time.Parse("2006-01-02", s.expires); err == nil {
			ing.ExpirationDate = &t
		}
		out = append(out, ing)
	}
	return out
}

// Seed inserts the starter inventory, skipping rows whose ingredient id
// already exists. It returns the number of rows created.
func Seed(db *gorm.DB) (int, error) {
	created := 0
	for _, ing := range SeedIngredients() {
		var count int
		if err := db.Model(&models.Ingredient{}).Where("ingredient_id = ?", ing.IngredientID).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to check ingredient %s: %w", ing.IngredientID, err)
		}
		if count > 0 {
			continue
		}
		item := ing
		if err := db.Create(&item).Error; err != nil {
			return created, fmt.Errorf("failed to seed ingredient %s: %w", ing.Name, err)
		}
		created++
	}
	return created, nil
}

// PutItemAPI is the part of the DynamoDB client used by SeedDynamo.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// SeedDynamo writes the starter inventory into a DynamoDB table
func SeedDynamo(ctx context.Context, client PutItemAPI, table string) error {
	for _, s := range seedItems {
		_, err := client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(table),
			Item: map[string]types.AttributeValue{
				"IngredientId":      &types.AttributeValueMemberS{Value: s.id},
				"IngredientName":    &types.AttributeValueMemberS{Value: s.name},
				"Quantity":          &types.AttributeValueMemberN{Value: strconv.FormatFloat(s.quantity, 'f', -1, 64)},
				"UnitOfMeasurement": &types.AttributeValueMemberS{Value: string(s.unit)},
				"ExpirationDate":    &types.AttributeValueMemberS{Value: s.expires},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to put ingredient %s: %w", s.name, err)
		}
	}
	return nil
}
