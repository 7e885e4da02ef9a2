package store

import (
	"context"
	"fmt"

	"github.com/abiraja/quizforge/ent"
	entquestion "github.com/abiraja/quizforge/ent/question"
	"github.com/abiraja/quizforge/internal/question"
)

// questionRepo implements QuestionRepo backed by ent. All access rides
// the owning session's ownership rule.
type questionRepo struct {
	client *ent.Client
}

func (r *questionRepo) Create(ctx context.Context, actor question.Actor, sessionID int, data QuestionData) (*question.Question, error) {
	var created question.Question
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		if err := requireActiveSession(ctx, tx.Session, actor, sessionID); err != nil {
			return err
		}
		base, err := maxPosition(ctx, tx.Question, sessionID)
		if err != nil {
			return err
		}
		qs, err := insertQuestions(ctx, tx.Question, actor, sessionID, base, []QuestionData{data})
		if err != nil {
			return err
		}
		created = qs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *questionRepo) CreateBatch(ctx context.Context, actor question.Actor, sessionID int, items []QuestionData) ([]question.Question, error) {
	var qs []question.Question
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		if err := requireActiveSession(ctx, tx.Session, actor, sessionID); err != nil {
			return err
		}
		base, err := maxPosition(ctx, tx.Question, sessionID)
		if err != nil {
			return err
		}
		qs, err = insertQuestions(ctx, tx.Question, actor, sessionID, base, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *questionRepo) Get(ctx context.Context, actor question.Actor, id int) (*question.Question, error) {
	e, err := getOwnedQuestion(ctx, r.client, actor, id)
	if err != nil {
		return nil, err
	}
	q := questionFromEnt(e)
	return &q, nil
}

func (r *questionRepo) BySession(ctx context.Context, actor question.Actor, sessionID int, includeDeleted bool) ([]question.Question, error) {
	if _, err := getOwnedSession(ctx, r.client.Session, actor, sessionID); err != nil {
		return nil, err
	}

	q := r.client.Question.Query().Where(entquestion.SessionID(sessionID))
	if !includeDeleted {
		q = q.Where(entquestion.StatusEQ(entquestion.StatusActive))
	}
	rows, err := q.Order(ent.Asc(entquestion.FieldPosition)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions of session %d: %w", sessionID, err)
	}

	out := make([]question.Question, len(rows))
	for i, e := range rows {
		out[i] = questionFromEnt(e)
	}
	return out, nil
}

func (r *questionRepo) Update(ctx context.Context, actor question.Actor, id int, patch QuestionPatch) (*question.Question, error) {
	var updated *ent.Question
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		e, err := getOwnedQuestionTx(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		upd := tx.Question.UpdateOneID(id)
		if patch.Text != nil {
			upd = upd.SetText(*patch.Text)
		}
		if patch.Payload != nil {
			// The payload must match the question's immutable type.
			if _, err := question.ParsePayload(question.Type(e.Type), patch.Payload); err != nil {
				return err
			}
			upd = upd.SetPayload(patch.Payload)
		}
		if patch.Difficulty != nil {
			upd = upd.SetDifficulty(entquestion.Difficulty(*patch.Difficulty))
		}
		if patch.Tags != nil {
			upd = upd.SetTags(patch.Tags)
		}

		updated, err = upd.Save(ctx)
		if err != nil {
			return fmt.Errorf("update question %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	q := questionFromEnt(updated)
	return &q, nil
}

func (r *questionRepo) Delete(ctx context.Context, actor question.Actor, id int) error {
	return withTx(ctx, r.client, func(tx *ent.Tx) error {
		if _, err := getOwnedQuestionTx(ctx, tx, actor, id); err != nil {
			return err
		}
		_, err := tx.Question.UpdateOneID(id).
			SetStatus(entquestion.StatusDeleted).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("delete question %d: %w", id, err)
		}
		return nil
	})
}

func (r *questionRepo) Reorder(ctx context.Context, actor question.Actor, sessionID int, ids []int) error {
	return withTx(ctx, r.client, func(tx *ent.Tx) error {
		if _, err := getActiveSession(ctx, tx.Session, actor, sessionID); err != nil {
			return err
		}

		rows, err := tx.Question.Query().
			Where(
				entquestion.SessionID(sessionID),
				entquestion.StatusEQ(entquestion.StatusActive),
			).
			All(ctx)
		if err != nil {
			return fmt.Errorf("list questions of session %d: %w", sessionID, err)
		}

		// ids must name every active question exactly once.
		active := make(map[int]bool, len(rows))
		for _, e := range rows {
			active[e.ID] = true
		}
		if len(ids) != len(rows) {
			return fmt.Errorf("%w: need all %d active questions, got %d IDs", ErrInvalidReorder, len(rows), len(ids))
		}
		seen := make(map[int]bool, len(ids))
		for _, id := range ids {
			if !active[id] {
				return fmt.Errorf("%w: question %d is not an active member of session %d", ErrInvalidReorder, id, sessionID)
			}
			if seen[id] {
				return fmt.Errorf("%w: duplicate question ID %d", ErrInvalidReorder, id)
			}
			seen[id] = true
		}

		for i, id := range ids {
			_, err := tx.Question.UpdateOneID(id).
				SetPosition(i + 1).
				Save(ctx)
			if err != nil {
				return fmt.Errorf("reposition question %d: %w", id, err)
			}
		}
		return nil
	})
}

// insertQuestions validates every payload and appends the items at
// positions base+1..base+n. Any invalid item fails the whole batch.
func insertQuestions(ctx context.Context, c *ent.QuestionClient, actor question.Actor, sessionID, base int, items []QuestionData) ([]question.Question, error) {
	out := make([]question.Question, 0, len(items))
	for i, d := range items {
		if _, err := question.ParsePayload(d.Type, d.Payload); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}

		source := d.Source
		if source == "" {
			source = question.SourceManual
		}
		difficulty := d.Difficulty
		if difficulty == "" {
			difficulty = question.DifficultyMedium
		}

		e, err := c.Create().
			SetSessionID(sessionID).
			SetType(entquestion.Type(d.Type)).
			SetText(d.Text).
			SetPayload(d.Payload).
			SetSource(entquestion.Source(source)).
			SetNillableConfidence(d.Confidence).
			SetDifficulty(entquestion.Difficulty(difficulty)).
			SetTags(d.Tags).
			SetCreatorID(actor.ID).
			SetPosition(base + i + 1).
			Save(ctx)
		if err != nil {
			return nil, fmt.Errorf("create question %d: %w", i+1, err)
		}
		out = append(out, questionFromEnt(e))
	}
	return out, nil
}

// maxPosition returns the highest position ever assigned in a session,
// deleted rows included, so retired positions are never reused.
func maxPosition(ctx context.Context, c *ent.QuestionClient, sessionID int) (int, error) {
	last, err := c.Query().
		Where(entquestion.SessionID(sessionID)).
		Order(ent.Desc(entquestion.FieldPosition)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("max position of session %d: %w", sessionID, err)
	}
	return last.Position, nil
}

// requireActiveSession enforces ownership and rejects writes into a
// deleted session.
func requireActiveSession(ctx context.Context, c *ent.SessionClient, actor question.Actor, sessionID int) error {
	_, err := getActiveSession(ctx, c, actor, sessionID)
	return err
}

func getOwnedQuestion(ctx context.Context, client *ent.Client, actor question.Actor, id int) (*ent.Question, error) {
	e, err := client.Question.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("%w: question %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	if _, err := getOwnedSession(ctx, client.Session, actor, e.SessionID); err != nil {
		return nil, err
	}
	return e, nil
}

// getOwnedQuestionTx is the write-path question loader. Deleted is
// terminal for both the session and the question itself, so a retired
// question (or one inside a deleted session) accepts no further writes.
func getOwnedQuestionTx(ctx context.Context, tx *ent.Tx, actor question.Actor, id int) (*ent.Question, error) {
	e, err := tx.Question.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("%w: question %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	if _, err := getActiveSession(ctx, tx.Session, actor, e.SessionID); err != nil {
		return nil, err
	}
	if e.Status != entquestion.StatusActive {
		return nil, fmt.Errorf("%w: question %d is deleted", ErrNotFound, id)
	}
	return e, nil
}

func questionFromEnt(e *ent.Question) question.Question {
	return question.Question{
		ID:         e.ID,
		SessionID:  e.SessionID,
		Type:       question.Type(e.Type),
		Text:       e.Text,
		Payload:    e.Payload,
		Source:     question.Source(e.Source),
		Confidence: e.Confidence,
		Difficulty: question.Difficulty(e.Difficulty),
		Tags:       e.Tags,
		CreatorID:  e.CreatorID,
		Position:   e.Position,
		Status:     question.Status(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
