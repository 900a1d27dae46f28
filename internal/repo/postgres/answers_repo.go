package postgres

import (
	"context"
	"errors"

	"github.com/eduraio/qanda-api/internal/domain/answer"
	"github.com/eduraio/qanda-api/internal/observability"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnswersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAnswersRepo(pool *pgxpool.Pool, prom *observability.Prom) *AnswersRepo {
	return &AnswersRepo{pool: pool, prom: prom}
}

func (r *AnswersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const answerColumns = `id, answer, question_id, answer_by_user_id, created_at, updated_at`

func scanAnswer(row pgx.Row) (answer.Answer, error) {
	var a answer.Answer
	err := row.Scan(&a.ID, &a.Answer, &a.QuestionID, &a.AnswerByUserID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts the answer. The (question_id, answer_by_user_id) unique
// constraint is the authority on "one answer per question per user":
// concurrent racing creates resolve here, with the loser mapped to
// ErrAlreadyAnswered.
func (r *AnswersRepo) Create(ctx context.Context, a answer.Answer) (answer.Answer, error) {
	err := r.observe("answers.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO answers (id, answer, question_id, answer_by_user_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			a.ID, a.Answer, a.QuestionID, a.AnswerByUserID, a.CreatedAt, a.UpdatedAt,
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err, "answers_question_user_uniq") {
			return answer.Answer{}, answer.ErrAlreadyAnswered
		}
		return answer.Answer{}, err
	}

	return a, nil
}

func (r *AnswersRepo) GetByID(ctx context.Context, id string) (answer.Answer, error) {
	var a answer.Answer

	err := r.observe("answers.get_by_id", func() error {
		var e error
		a, e = scanAnswer(r.pool.QueryRow(ctx,
			`SELECT `+answerColumns+` FROM answers WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return answer.Answer{}, answer.ErrNotFound
		}
		return answer.Answer{}, err
	}

	return a, nil
}

// GetByQuestionAndUser looks an answer up by its composite unique key.
func (r *AnswersRepo) GetByQuestionAndUser(ctx context.Context, questionID, userID string) (answer.Answer, error) {
	var a answer.Answer

	err := r.observe("answers.get_by_question_and_user", func() error {
		var e error
		a, e = scanAnswer(r.pool.QueryRow(ctx,
			`SELECT `+answerColumns+` FROM answers WHERE question_id = $1 AND answer_by_user_id = $2`,
			questionID, userID))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return answer.Answer{}, answer.ErrNotFound
		}
		return answer.Answer{}, err
	}

	return a, nil
}

func buildAnswerFilter(f answer.ListFilter) *pagination.Filter {
	var filter pagination.Filter

	if f.ID != nil {
		filter.Equal("id", *f.ID)
	}
	if f.Answer != nil {
		filter.Contains("answer", *f.Answer)
	}
	if f.AnswerByUserID != nil {
		filter.Equal("answer_by_user_id", *f.AnswerByUserID)
	}
	if f.QuestionID != nil {
		filter.Equal("question_id", *f.QuestionID)
	}

	return &filter
}

func (r *AnswersRepo) List(ctx context.Context, f answer.ListFilter, page pagination.Query) (answers []answer.Answer, err error) {
	where, args := buildAnswerFilter(f).Where()
	tail, pageArgs := page.SortClause(len(args))

	query := `SELECT ` + answerColumns + ` FROM answers` + where + tail
	args = append(args, pageArgs...)

	var rows pgx.Rows

	err = r.observe("answers.list", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	answers = make([]answer.Answer, 0, page.Limit)

	for rows.Next() {
		var a answer.Answer

		e := rows.Scan(&a.ID, &a.Answer, &a.QuestionID, &a.AnswerByUserID, &a.CreatedAt, &a.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		answers = append(answers, a)
	}

	err = rows.Err()
	return
}

func (r *AnswersRepo) Count(ctx context.Context, f answer.ListFilter) (int, error) {
	where, args := buildAnswerFilter(f).Where()

	var total int
	err := r.observe("answers.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM answers`+where, args...).Scan(&total)
	})

	return total, err
}

func (r *AnswersRepo) Update(ctx context.Context, id string, req answer.UpdateAnswerRequest) (answer.Answer, error) {
	var a answer.Answer

	err := r.observe("answers.update", func() error {
		var e error
		a, e = scanAnswer(r.pool.QueryRow(ctx,
			`UPDATE answers
				SET answer = $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+answerColumns,
			id, req.Answer,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return answer.Answer{}, answer.ErrNotFound
		}
		return answer.Answer{}, err
	}

	return a, nil
}

func (r *AnswersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("answers.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM answers WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return answer.ErrNotFound
	}

	return nil
}
