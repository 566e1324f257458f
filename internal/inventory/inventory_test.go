package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orderintake/internal/database"
	"orderintake/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoreSourceLookup(t *testing.T) {
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	_, err = database.Seed(db)
	require.NoError(t, err)

	src := NewStoreSource(db, zap.NewNop())
	_, err = src.Upsert(context.Background(), "olives", 0, "")
	require.NoError(t, err)

	r := src.Lookup(context.Background(), []string{"dough", "pepperoni", "olives"})

	require.Contains(t, r.Stock, "dough")
	require.NotNil(t, r.Stock["dough"].Quantity)
	assert.Equal(t, 25.0, *r.Stock["dough"].Quantity)

	assert.NotContains(t, r.Stock, "pepperoni")

	require.Contains(t, r.Stock, "olives")
	assert.Nil(t, r.Stock["olives"].Quantity)
	assert.Empty(t, r.Diagnostics)
}

func TestStoreSourceUpsertAndList(t *testing.T) {
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	src := NewStoreSource(db, zap.NewNop())
	ctx := context.Background()

	item, err := src.Upsert(ctx, "pepperoni", 5, "")
	require.NoError(t, err)
	assert.Equal(t, "kg", item.Unit)

	item, err = src.Upsert(ctx, "pepperoni", 7.5, "")
	require.NoError(t, err)
	assert.Equal(t, 7.5, item.Quantity)

	_, err = src.Upsert(ctx, "basil", 1, "kg")
	require.NoError(t, err)

	items, err := src.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "basil", items[0].Name)
	assert.Equal(t, "pepperoni", items[1].Name)
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(nil)
	r := src.Lookup(context.Background(), []string{"Cheese", "mushrooms", "anchovies"})

	assert.True(t, r.Stock["Cheese"].Unmetered)
	assert.False(t, r.Stock["mushrooms"].Unmetered)
	assert.Nil(t, r.Stock["mushrooms"].Quantity)
	assert.Contains(t, r.Stock, "anchovies")
	assert.False(t, r.Stock["anchovies"].Unmetered)
}

func TestSisterClientAvailability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req sisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"rice", "egg", "tofu", "chicken"}, req.Ingredients)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rice": true, "egg": false, "chicken": 3.5}`))
	}))
	defer server.Close()

	c := NewSisterClient(server.URL, time.Second, zap.NewNop())
	r := c.Lookup(context.Background(), []string{"rice", "egg", "tofu", "chicken"})

	assert.True(t, r.Stock["rice"].Unmetered)
	assert.False(t, r.Stock["egg"].Unmetered)
	assert.Nil(t, r.Stock["egg"].Quantity)
	assert.NotContains(t, r.Stock, "tofu")
	require.NotNil(t, r.Stock["chicken"].Quantity)
	assert.Equal(t, 3.5, *r.Stock["chicken"].Quantity)
	assert.Empty(t, r.Diagnostics)
}

func TestSisterClientServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewSisterClient(server.URL, time.Second, zap.NewNop())
	r := c.Lookup(context.Background(), []string{"rice", "egg"})

	for _, name := range []string{"rice", "egg"} {
		require.Contains(t, r.Stock, name)
		assert.Nil(t, r.Stock[name].Quantity)
		assert.False(t, r.Stock[name].Unmetered)
	}
	require.Len(t, r.Diagnostics, 1)
	assert.Contains(t, r.Diagnostics[0], "503")
}

func TestSisterClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"rice": true}`))
	}))
	defer server.Close()

	c := NewSisterClient(server.URL, 20*time.Millisecond, zap.NewNop())
	r := c.Lookup(context.Background(), []string{"rice"})
	assert.False(t, r.Stock["rice"].Unmetered)
	assert.NotEmpty(t, r.Diagnostics)
}

type mockScan struct {
	mock.Mock
}

func (m *mockScan) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func scanFor(name string) interface{} {
	return mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		v, ok := in.ExpressionAttributeValues[":name"].(*types.AttributeValueMemberS)
		return ok && v.Value == name
	})
}

func TestDynamoSourceLookup(t *testing.T) {
	m := new(mockScan)
	m.On("Scan", mock.Anything, scanFor("dough")).Return(&dynamodb.ScanOutput{
		Count: 1,
		Items: []map[string]types.AttributeValue{{
			"IngredientName": &types.AttributeValueMemberS{Value: "dough"},
			"Quantity":       &types.AttributeValueMemberN{Value: "25"},
		}},
	}, nil)
	m.On("Scan", mock.Anything, scanFor("pepperoni")).Return(&dynamodb.ScanOutput{}, nil)
	m.On("Scan", mock.Anything, scanFor("olives")).Return(&dynamodb.ScanOutput{
		Count: 1,
		Items: []map[string]types.AttributeValue{{
			"Quantity": &types.AttributeValueMemberN{Value: "0"},
		}},
	}, nil)
	m.On("Scan", mock.Anything, scanFor("cheese")).Return(nil, errors.New("ResourceNotFoundException"))

	src := NewDynamoSource(m, "Ingredients", zap.NewNop())
	r := src.Lookup(context.Background(), []string{"dough", "pepperoni", "olives", "cheese"})

	require.NotNil(t, r.Stock["dough"].Quantity)
	assert.Equal(t, 25.0, *r.Stock["dough"].Quantity)
	assert.NotContains(t, r.Stock, "pepperoni")
	assert.Nil(t, r.Stock["olives"].Quantity)
	assert.Contains(t, r.Stock, "cheese")
	assert.Nil(t, r.Stock["cheese"].Quantity)
	require.Len(t, r.Diagnostics, 1)
	assert.Contains(t, r.Diagnostics[0], "cheese")
}

func TestDynamoSourceFollowsPages(t *testing.T) {
	m := new(mockScan)
	m.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.ScanOutput{
		LastEvaluatedKey: map[string]types.AttributeValue{
			"IngredientId": &types.AttributeValueMemberS{Value: "10"},
		},
	}, nil)
	m.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.ScanOutput{
		Count: 1,
		Items: []map[string]types.AttributeValue{{
			"Quantity": &types.AttributeValueMemberS{Value: "30"},
		}},
	}, nil)

	r := NewDynamoSource(m, "Ingredients", zap.NewNop()).Lookup(context.Background(), []string{"cheese"})
	require.NotNil(t, r.Stock["cheese"].Quantity)
	assert.Equal(t, 30.0, *r.Stock["cheese"].Quantity)
	m.AssertNumberOfCalls(t, "Scan", 2)
}

func TestSelector(t *testing.T) {
	current := NewStaticSource(map[string]bool{"dough": true})
	sel := NewSelector(current, nil)

	assert.Equal(t, "static", sel.For(models.InventoryCurrent).Name())

	r := sel.For(models.InventorySister).Lookup(context.Background(), []string{"rice"})
	assert.Contains(t, r.Stock, "rice")
	assert.Nil(t, r.Stock["rice"].Quantity)
	assert.NotEmpty(t, r.Diagnostics)

	r = sel.For("downtown").Lookup(context.Background(), []string{"rice"})
	assert.False(t, r.Stock["rice"].Unmetered)
}
