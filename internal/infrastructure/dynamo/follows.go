package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hirewire-api/internal/domain"
)

// FollowRepo manages follower edges. PK: followed_id, SK: follower_id.
type FollowRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFollowRepo(client *dynamodb.Client, tableName string) *FollowRepo {
	return &FollowRepo{client: client, tableName: tableName}
}

func (r *FollowRepo) Put(ctx context.Context, f *domain.Follow) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal follow: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FollowRepo) Delete(ctx context.Context, followedID, followerID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("followed_id", followedID, "follower_id", followerID),
	})
	return err
}

// ListFollowerIDs returns the ids of everyone following followedID. A single
// partition query, paginated until exhausted.
func (r *FollowRepo) ListFollowerIDs(ctx context.Context, followedID string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("followed_id = :fid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fid": &types.AttributeValueMemberS{Value: followedID},
		},
	}

	var ids []string
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			if v, ok := item["follower_id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return ids, nil
}
