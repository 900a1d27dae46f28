package postgres

import (
	"context"
	"errors"

	"github.com/eduraio/qanda-api/internal/domain/question"
	"github.com/eduraio/qanda-api/internal/observability"
	"github.com/eduraio/qanda-api/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewQuestionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *QuestionsRepo {
	return &QuestionsRepo{pool: pool, prom: prom}
}

func (r *QuestionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const questionColumns = `id, question, created_by_user_id, created_at, updated_at`

func (r *QuestionsRepo) Create(ctx context.Context, q question.Question) (question.Question, error) {
	err := r.observe("questions.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO questions (id, question, created_by_user_id, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5)`,
			q.ID, q.Question, q.CreatedByUserID, q.CreatedAt, q.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return question.Question{}, err
	}

	return q, nil
}

func (r *QuestionsRepo) GetByID(ctx context.Context, id string) (question.Question, error) {
	var q question.Question

	err := r.observe("questions.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id,
		).Scan(&q.ID, &q.Question, &q.CreatedByUserID, &q.CreatedAt, &q.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, err
	}

	return q, nil
}

func buildQuestionFilter(f question.ListFilter) *pagination.Filter {
	var filter pagination.Filter

	if f.ID != nil {
		filter.Equal("id", *f.ID)
	}
	if f.Question != nil {
		filter.Contains("question", *f.Question)
	}
	if f.CreatedByUserID != nil {
		filter.Equal("created_by_user_id", *f.CreatedByUserID)
	}

	return &filter
}

func (r *QuestionsRepo) List(ctx context.Context, f question.ListFilter, page pagination.Query) (questions []question.Question, err error) {
	where, args := buildQuestionFilter(f).Where()
	tail, pageArgs := page.SortClause(len(args))

	query := `SELECT ` + questionColumns + ` FROM questions` + where + tail
	args = append(args, pageArgs...)

	var rows pgx.Rows

	err = r.observe("questions.list", func() error {
		rows, err = r.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	questions = make([]question.Question, 0, page.Limit)

	for rows.Next() {
		var q question.Question

		e := rows.Scan(&q.ID, &q.Question, &q.CreatedByUserID, &q.CreatedAt, &q.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		questions = append(questions, q)
	}

	err = rows.Err()
	return
}

func (r *QuestionsRepo) Count(ctx context.Context, f question.ListFilter) (int, error) {
	where, args := buildQuestionFilter(f).Where()

	var total int
	err := r.observe("questions.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total)
	})

	return total, err
}

// AnswerAuthors is the include-answers projection a question read needs:
// the author ids of every answer under each given question, keyed by
// question id. The answered-by-me flag is derived from this at read time.
func (r *QuestionsRepo) AnswerAuthors(ctx context.Context, questionIDs []string) (map[string][]string, error) {
	authors := make(map[string][]string, len(questionIDs))

	if len(questionIDs) == 0 {
		return authors, nil
	}

	var rows pgx.Rows
	var err error

	err = r.observe("questions.answer_authors", func() error {
		rows, err = r.pool.Query(ctx,
			`SELECT question_id, answer_by_user_id FROM answers WHERE question_id = ANY($1)`,
			questionIDs,
		)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var questionID, authorID string

		if e := rows.Scan(&questionID, &authorID); e != nil {
			return nil, e
		}
		authors[questionID] = append(authors[questionID], authorID)
	}

	if e := rows.Err(); e != nil {
		return nil, e
	}

	return authors, nil
}

func (r *QuestionsRepo) Update(ctx context.Context, id string, req question.UpdateQuestionRequest) (question.Question, error) {
	var q question.Question

	err := r.observe("questions.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE questions
				SET question = $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+questionColumns,
			id, req.Question,
		).Scan(&q.ID, &q.Question, &q.CreatedByUserID, &q.CreatedAt, &q.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.Question{}, question.ErrNotFound
		}
		return question.Question{}, err
	}

	return q, nil
}

func (r *QuestionsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("questions.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return question.ErrNotFound
	}

	return nil
}
