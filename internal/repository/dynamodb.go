package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	pkPrefixState = "STATE#"
	skSnapshot    = "SNAPSHOT"
	attrPayload   = "payload"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps one item per key in a table with a PK/SK string key schema.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

func NewDynamoStore(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, now: time.Now}, nil
}

func stateKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefixState + key},
		"SK": &types.AttributeValueMemberS{Value: skSnapshot},
	}
}

func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            stateKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("repository: dynamodb get %q: %w", key, err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, false, nil
	}
	payload, err := strAttr(out.Item, attrPayload)
	if err != nil {
		return nil, false, fmt.Errorf("repository: dynamodb get %q: %w", key, err)
	}
	return []byte(payload), true, nil
}

func (s *DynamoStore) Put(ctx context.Context, key string, value []byte) error {
	item := stateKey(key)
	item[attrPayload] = &types.AttributeValueMemberS{Value: string(value)}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)}

	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: dynamodb put %q: %w", key, err)
	}
	return nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
