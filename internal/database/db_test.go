package database

import (
	"context"
	"testing"

	"orderintake/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOpenAndSeed(t *testing.T) {
	db, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	created, err := Seed(db)
	require.NoError(t, err)
	assert.Equal(t, 22, created)

	// seeding twice does not duplicate rows
	created, err = Seed(db)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var dough models.Ingredient
	require.NoError(t, db.Where("ingredient_name = ?", "dough").First(&dough).Error)
	assert.Equal(t, 25.0, dough.Quantity)
	assert.Equal(t, "kg", dough.Unit)
	require.NotNil(t, dough.ExpirationDate)

	var count int
	require.NoError(t, db.Model(&models.Ingredient{}).Where("ingredient_name = ?", "pepperoni").Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "user@/db")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInitDB(t *testing.T) {
	require.NoError(t, InitDB("sqlite3", ":memory:"))
	assert.NotNil(t, GetDB())
	assert.NoError(t, CloseDB())
}

type mockPutItem struct {
	mock.Mock
}

func (m *mockPutItem) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	return &dynamodb.PutItemOutput{}, args.Error(0)
}

func TestSeedDynamo(t *testing.T) {
	m := new(mockPutItem)
	m.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		_, ok := in.Item["IngredientName"].(*types.AttributeValueMemberS)
		return *in.TableName == "Ingredients" && ok
	})).Return(nil)

	require.NoError(t, SeedDynamo(context.Background(), m, "Ingredients"))
	m.AssertNumberOfCalls(t, "PutItem", 22)
}
