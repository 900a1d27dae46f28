package answer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Answer struct {
	ID             string    `json:"id"`
	Answer         string    `json:"answer"`
	QuestionID     string    `json:"questionId"`
	AnswerByUserID string    `json:"answerByUserId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("answer not found")

// one answer per (question, user)
var ErrAlreadyAnswered = errors.New("user can only answer the question once")

// askers do not get to answer themselves
var ErrOwnQuestion = errors.New("user cannot answer their own question")

// with pointers if optional, it will be nil
type ListFilter struct {
	ID             *string // exact
	Answer         *string // case-insensitive contains
	AnswerByUserID *string // exact
	QuestionID     *string // exact
}

type CreateAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required,uuid"`
	Answer     string `json:"answer" binding:"required,min=1,max=1000"`
}

type UpdateAnswerRequest struct {
	Answer string `json:"answer" binding:"required,min=1,max=1000"`
}

func NewFromCreateRequest(req CreateAnswerRequest, answerByUserID string) Answer {
	now := time.Now().UTC()
	return Answer{
		ID:             uuid.NewString(),
		Answer:         req.Answer,
		QuestionID:     req.QuestionID,
		AnswerByUserID: answerByUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
