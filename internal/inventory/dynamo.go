package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ScanAPI is the part of the DynamoDB client used by DynamoSource.
type ScanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoSource looks ingredients up in a DynamoDB table keyed by IngredientID
// by scanning on IngredientName.
type DynamoSource struct {
	client ScanAPI
	table  string
	logger *zap.Logger
}

// NewDynamoSource creates a DynamoDB backed source
func NewDynamoSource(client ScanAPI, table string, logger *zap.Logger) *DynamoSource {
	return &DynamoSource{client: client, table: table, logger: logger}
}

// Name implements Source
func (s *DynamoSource) Name() string { return "dynamodb" }

// Lookup implements Source
func (s *DynamoSource) Lookup(ctx context.Context, names []string) Report {
	r := newReport()
	for _, name := range names {
		item, err := s.find(ctx, name)
		if err != nil {
			s.logger.Error("dynamodb scan failed", zap.String("ingredient", name), zap.Error(err))
			r.Stock[name] = Stock{}
			r.diag(fmt.Sprintf("Error looking up %s: %v", name, err))
			continue
		}
		if item == nil {
			s.logger.Warn("ingredient not found", zap.String("ingredient", name))
			continue
		}

		quantity, err := quantityOf(item)
		if err != nil {
			r.Stock[name] = Stock{}
			r.diag(fmt.Sprintf("Error reading quantity of %s: %v", name, err))
			continue
		}
		if quantity <= 0 {
			s.logger.Warn("ingredient found, but quantity is 0", zap.String("ingredient", name))
			r.Stock[name] = Stock{}
			continue
		}
		r.Stock[name] = Stock{Quantity: ptr(quantity)}
	}
	return r
}

// find returns the first item whose IngredientName equals name, following scan
// pages until one matches.
func (s *DynamoSource) find(ctx context.Context, name string) (map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("IngredientName = :name"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
		},
	}

	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, err
		}
		if len(out.Items) > 0 {
			return out.Items[0], nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func quantityOf(item map[string]types.AttributeValue) (float64, error) {
	switch v := item["Quantity"].(type) {
	case nil:
		return 0, nil
	case *types.AttributeValueMemberN:
		return strconv.ParseFloat(v.Value, 64)
	case *types.AttributeValueMemberS:
		return strconv.ParseFloat(v.Value, 64)
	default:
		return 0, fmt.Errorf("unsupported Quantity attribute type %T", v)
	}
}
