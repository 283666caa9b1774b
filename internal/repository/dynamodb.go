package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"transcriptions/internal/config"
	"transcriptions/internal/logger"
	"transcriptions/internal/model"
)

// DynamoDBAPI is the subset of the DynamoDB client the repository uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type dynamoRepository struct {
	client DynamoDBAPI
	table  string
	log    *logger.Logger
}

// NewDynamoDBClient builds a DynamoDB client from the AWS settings. Static
// credentials are used when both key id and secret are set, otherwise the
// default credential chain applies.
func NewDynamoDBClient(ctx context.Context, cfg config.AWSConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	var ddbOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		ddbOpts = append(ddbOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, ddbOpts...), nil
}

// NewDynamoDBRepository creates a repository backed by a DynamoDB table whose
// partition key is the numeric attribute "id".
func NewDynamoDBRepository(client DynamoDBAPI, table string, log *logger.Logger) TranscriptionRepository {
	return &dynamoRepository{
		client: client,
		table:  table,
		log:    log.WithComponent("dynamodb"),
	}
}

func (r *dynamoRepository) key(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		model.AttrID: &types.AttributeValueMemberN{Value: model.Key(id)},
	}
}

func (r *dynamoRepository) Get(ctx context.Context, id int64) (model.Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transcription %d: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return fromAttributeValues(out.Item), nil
}

func (r *dynamoRepository) CreateIfAbsent(ctx context.Context, t *model.Transcription) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			model.AttrID:   &types.AttributeValueMemberN{Value: model.Key(t.ID)},
			model.AttrData: &types.AttributeValueMemberS{Value: t.Data},
		},
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": model.AttrID,
		},
	})

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		r.log.Warn("Conditional put lost to an existing record", map[string]interface{}{"id": t.ID})
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to put transcription %d: %w", t.ID, err)
	}
	return nil
}

func (r *dynamoRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete transcription %d: %w", id, err)
	}
	return nil
}

// fromAttributeValues keeps the number and string attributes of a DynamoDB
// item. Records only ever carry those two types.
func fromAttributeValues(av map[string]types.AttributeValue) model.Item {
	item := make(model.Item, len(av))
	for name, v := range av {
		switch tv := v.(type) {
		case *types.AttributeValueMemberN:
			item[name] = model.NumberAttr(tv.Value)
		case *types.AttributeValueMemberS:
			item[name] = model.StringAttr(tv.Value)
		}
	}
	return item
}
