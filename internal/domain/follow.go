package domain

import "time"

// Follow is an edge from a follower (student/staff) to a followed account
// (recruiter/institute). PK: followed_id, SK: follower_id, so resolving the
// follower list for a fan-out is a single-partition query.
type Follow struct {
	FollowedID string    `json:"followed_id" dynamodbav:"followed_id"`
	FollowerID string    `json:"follower_id" dynamodbav:"follower_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
