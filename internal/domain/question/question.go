package question

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID              string    `json:"id"`
	Question        string    `json:"question"`
	CreatedByUserID string    `json:"createdByUserId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// WithAnsweredFlag is the read-time view of a question for a specific
// caller. AnsweredByMe is derived from the question's answers on every
// read and is never stored.
type WithAnsweredFlag struct {
	Question
	AnsweredByMe bool `json:"answeredByMe"`
}

var ErrNotFound = errors.New("question not found")

// with pointers if optional, it will be nil
type ListFilter struct {
	ID              *string // exact
	Question        *string // case-insensitive contains
	CreatedByUserID *string // exact
}

type CreateQuestionRequest struct {
	Question string `json:"question" binding:"required,min=3,max=1000"`
}

type UpdateQuestionRequest struct {
	Question string `json:"question" binding:"required,min=3,max=1000"`
}

func NewFromCreateRequest(req CreateQuestionRequest, createdByUserID string) Question {
	now := time.Now().UTC()
	return Question{
		ID:              uuid.NewString(),
		Question:        req.Question,
		CreatedByUserID: createdByUserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AnsweredBy reports whether any of the answers' author ids belongs to
// the viewing user.
func AnsweredBy(answerAuthorIDs []string, viewerID string) bool {
	for _, id := range answerAuthorIDs {
		if id == viewerID {
			return true
		}
	}
	return false
}
