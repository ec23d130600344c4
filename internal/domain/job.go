package domain

import "time"

type Job struct {
	JobID        string     `json:"id" dynamodbav:"job_id"`
	PostedByID   string     `json:"posted_by_id" dynamodbav:"posted_by_id"`
	PostedByName string     `json:"posted_by_name" dynamodbav:"posted_by_name"`
	Title        string     `json:"title" dynamodbav:"title"`
	Description  string     `json:"description" dynamodbav:"description"`
	Location     string     `json:"location" dynamodbav:"location"`
	Salary       *string    `json:"salary,omitempty" dynamodbav:"salary"`
	Enable       bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Location    string  `json:"location"`
	Salary      *string `json:"salary"`
}
