// Package dynamo mirrors placed orders into a DynamoDB table.
package dynamo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/ec-shop-assistant/internal/domain/order"
)

// PutItemAPI is the slice of the DynamoDB client the mirror needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// dynamoOrder represents the DynamoDB item structure
type dynamoOrder struct {
	OrderID        string `dynamodbav:"order_id"`
	UserID         string `dynamodbav:"user_id"`
	CartID         string `dynamodbav:"cart_id"`
	Items          string `dynamodbav:"items"`
	TotalPrice     int    `dynamodbav:"total_price"`
	DeliverySlot   string `dynamodbav:"delivery_slot"`
	Status         string `dynamodbav:"status"`
	PaymentStatus  string `dynamodbav:"payment_status"`
	DeliveryStatus string `dynamodbav:"delivery_status"`
	CreatedAt      string `dynamodbav:"created_at"`
}

type OrderMirror struct {
	client    PutItemAPI
	tableName string
}

func NewOrderMirror(client PutItemAPI, tableName string) *OrderMirror {
	return &OrderMirror{client: client, tableName: tableName}
}

// NewClient loads the default AWS configuration (env, shared config, role).
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// SaveOrder puts the order unless one with the same id already exists.
func (m *OrderMirror) SaveOrder(ctx context.Context, o order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	av, err := attributevalue.MarshalMap(dynamoOrder{
		OrderID:        o.ID,
		UserID:         o.UserID,
		CartID:         o.CartID,
		Items:          string(items),
		TotalPrice:     o.TotalPrice,
		DeliverySlot:   o.DeliverySlot,
		Status:         string(o.Status),
		PaymentStatus:  o.PaymentStatus,
		DeliveryStatus: o.DeliveryStatus,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(m.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(order_id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}
	return nil
}
