package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hirewire-api/internal/domain"
)

// JobRepo provides typed DynamoDB operations for the jobs table.
type JobRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewJobRepo(client *dynamodb.Client, tableName string) *JobRepo {
	return &JobRepo{client: client, tableName: tableName}
}

func (r *JobRepo) Put(ctx context.Context, j *domain.Job) error {
	item, err := attributevalue.MarshalMap(j)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *JobRepo) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("job_id", jobID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("job not found: %w", domain.ErrNotFound)
	}
	var j domain.Job
	if err := attributevalue.UnmarshalMap(out.Item, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// ListByPoster queries the posted_by_id GSI, newest first.
func (r *JobRepo) ListByPoster(ctx context.Context, posterID string) ([]domain.Job, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("posted_by_id-created_at-index"),
		KeyConditionExpression: aws.String("posted_by_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: posterID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var jobs []domain.Job
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ScanPage returns a page of enabled job postings, cursor-paginated.
func (r *JobRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Job, string, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("enable = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		jobID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"job_id": &types.AttributeValueMemberS{Value: jobID},
		}
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var jobs []domain.Job
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &jobs); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["job_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return jobs, nextCursor, nil
}

func (r *JobRepo) Update(ctx context.Context, jobID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("job_id", jobID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *JobRepo) SoftDelete(ctx context.Context, jobID string) error {
	return r.Update(ctx, jobID, map[string]interface{}{
		fieldEnable:    false,
		fieldDeletedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
