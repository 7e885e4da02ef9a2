package store

import (
	"context"
	"fmt"

	"github.com/abiraja/quizforge/ent"
	entquestion "github.com/abiraja/quizforge/ent/question"
	entsession "github.com/abiraja/quizforge/ent/session"
	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/question"
)

// sessionRepo implements SessionRepo backed by ent.
type sessionRepo struct {
	client *ent.Client
}

func (r *sessionRepo) Create(ctx context.Context, actor question.Actor, data SessionData) (*Session, error) {
	e, err := createSession(ctx, r.client.Session, actor, data)
	if err != nil {
		return nil, err
	}
	return sessionFromEnt(e), nil
}

func (r *sessionRepo) Get(ctx context.Context, actor question.Actor, id int) (*Session, error) {
	e, err := getOwnedSession(ctx, r.client.Session, actor, id)
	if err != nil {
		return nil, err
	}
	return sessionFromEnt(e), nil
}

func (r *sessionRepo) List(ctx context.Context, actor question.Actor, includeDeleted bool) ([]*Session, error) {
	q := r.client.Session.Query()
	if !actor.Elevated {
		q = q.Where(entsession.OwnerID(actor.ID))
	}
	if !includeDeleted {
		q = q.Where(entsession.StatusEQ(entsession.StatusActive))
	}
	rows, err := q.Order(ent.Desc(entsession.FieldCreatedAt)).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]*Session, len(rows))
	for i, e := range rows {
		out[i] = sessionFromEnt(e)
	}
	return out, nil
}

func (r *sessionRepo) Update(ctx context.Context, actor question.Actor, id int, patch SessionPatch) (*Session, error) {
	var updated *ent.Session
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		e, err := getActiveSession(ctx, tx.Session, actor, id)
		if err != nil {
			return err
		}
		if patch.ExpectedVersion != 0 && e.Version != patch.ExpectedVersion {
			return fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, e.Version, patch.ExpectedVersion)
		}

		upd := tx.Session.UpdateOneID(id).SetVersion(e.Version + 1)
		if patch.Name != nil {
			upd = upd.SetName(*patch.Name)
		}
		if patch.Content != nil {
			if err := content.Validate(*patch.Content); err != nil {
				return err
			}
			upd = upd.SetContent(*patch.Content).
				SetContentHash(content.Fingerprint(*patch.Content))
		}
		if patch.QuestionType != nil {
			upd = upd.SetQuestionType(entsession.QuestionType(*patch.QuestionType))
		}
		if patch.QuestionCount != nil {
			upd = upd.SetQuestionCount(*patch.QuestionCount)
		}

		updated, err = upd.Save(ctx)
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessionFromEnt(updated), nil
}

func (r *sessionRepo) Delete(ctx context.Context, actor question.Actor, id int) error {
	return withTx(ctx, r.client, func(tx *ent.Tx) error {
		e, err := getActiveSession(ctx, tx.Session, actor, id)
		if err != nil {
			return err
		}

		_, err = tx.Session.UpdateOneID(id).
			SetStatus(entsession.StatusDeleted).
			SetVersion(e.Version + 1).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("delete session %d: %w", id, err)
		}

		// Orphaned active questions would resurface on duplicate, so
		// the cascade rides the same transaction.
		_, err = tx.Question.Update().
			Where(
				entquestion.SessionID(id),
				entquestion.StatusEQ(entquestion.StatusActive),
			).
			SetStatus(entquestion.StatusDeleted).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("delete questions of session %d: %w", id, err)
		}
		return nil
	})
}

func (r *sessionRepo) Duplicate(ctx context.Context, actor question.Actor, id int, newName string) (*Session, error) {
	var dup *ent.Session
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		src, err := getActiveSession(ctx, tx.Session, actor, id)
		if err != nil {
			return err
		}

		name := newName
		if name == "" {
			name = src.Name + " (copy)"
		}

		dup, err = tx.Session.Create().
			SetOwnerID(actor.ID).
			SetName(name).
			SetContent(src.Content).
			SetContentHash(src.ContentHash).
			SetQuestionType(src.QuestionType).
			SetQuestionCount(src.QuestionCount).
			SetProvider(src.Provider).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("duplicate session %d: %w", id, err)
		}

		rows, err := tx.Question.Query().
			Where(
				entquestion.SessionID(id),
				entquestion.StatusEQ(entquestion.StatusActive),
			).
			Order(ent.Asc(entquestion.FieldPosition)).
			All(ctx)
		if err != nil {
			return fmt.Errorf("load questions of session %d: %w", id, err)
		}

		for i, q := range rows {
			_, err := tx.Question.Create().
				SetSessionID(dup.ID).
				SetType(q.Type).
				SetText(q.Text).
				SetPayload(q.Payload).
				SetSource(q.Source).
				SetNillableConfidence(q.Confidence).
				SetDifficulty(q.Difficulty).
				SetTags(q.Tags).
				SetCreatorID(q.CreatorID).
				SetPosition(i + 1).
				Save(ctx)
			if err != nil {
				return fmt.Errorf("copy question %d: %w", q.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessionFromEnt(dup), nil
}

func (r *sessionRepo) CreateWithQuestions(ctx context.Context, actor question.Actor, data SessionData, items []QuestionData) (*Session, []question.Question, error) {
	var (
		sess *ent.Session
		qs   []question.Question
	)
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		var err error
		sess, err = createSession(ctx, tx.Session, actor, data)
		if err != nil {
			return err
		}
		qs, err = insertQuestions(ctx, tx.Question, actor, sess.ID, 0, items)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sessionFromEnt(sess), qs, nil
}

func (r *sessionRepo) ReplaceQuestions(ctx context.Context, actor question.Actor, sessionID, expectedVersion int, provider string, items []QuestionData) ([]question.Question, error) {
	var qs []question.Question
	err := withTx(ctx, r.client, func(tx *ent.Tx) error {
		e, err := getActiveSession(ctx, tx.Session, actor, sessionID)
		if err != nil {
			return err
		}
		if expectedVersion != 0 && e.Version != expectedVersion {
			return fmt.Errorf("%w: have %d, expected %d", ErrVersionConflict, e.Version, expectedVersion)
		}

		_, err = tx.Question.Update().
			Where(
				entquestion.SessionID(sessionID),
				entquestion.StatusEQ(entquestion.StatusActive),
			).
			SetStatus(entquestion.StatusDeleted).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("retire questions of session %d: %w", sessionID, err)
		}

		base, err := maxPosition(ctx, tx.Question, sessionID)
		if err != nil {
			return err
		}
		qs, err = insertQuestions(ctx, tx.Question, actor, sessionID, base, items)
		if err != nil {
			return err
		}

		_, err = tx.Session.UpdateOneID(sessionID).
			SetProvider(provider).
			SetVersion(e.Version + 1).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("update session %d: %w", sessionID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return qs, nil
}

// createSession validates the content and stores a new session with its
// fingerprint, using whichever client (transactional or not) is passed.
func createSession(ctx context.Context, c *ent.SessionClient, actor question.Actor, data SessionData) (*ent.Session, error) {
	if err := content.Validate(data.Content); err != nil {
		return nil, err
	}
	if !data.QuestionType.Valid() {
		return nil, fmt.Errorf("invalid question type %q", data.QuestionType)
	}

	count := data.QuestionCount
	if count <= 0 {
		count = 5
	}

	e, err := c.Create().
		SetOwnerID(actor.ID).
		SetName(data.Name).
		SetContent(data.Content).
		SetContentHash(content.Fingerprint(data.Content)).
		SetQuestionType(entsession.QuestionType(data.QuestionType)).
		SetQuestionCount(count).
		SetProvider(data.Provider).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return e, nil
}

// getOwnedSession loads a session and enforces the ownership rule:
// only the owner or an elevated actor may touch it.
func getOwnedSession(ctx context.Context, c *ent.SessionClient, actor question.Actor, id int) (*ent.Session, error) {
	e, err := c.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("%w: session %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	if !actor.Elevated && e.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: session %d", ErrNotOwner, id)
	}
	return e, nil
}

// getActiveSession is getOwnedSession plus the terminal-delete rule:
// a deleted session accepts no further writes.
func getActiveSession(ctx context.Context, c *ent.SessionClient, actor question.Actor, id int) (*ent.Session, error) {
	e, err := getOwnedSession(ctx, c, actor, id)
	if err != nil {
		return nil, err
	}
	if e.Status != entsession.StatusActive {
		return nil, fmt.Errorf("%w: session %d is deleted", ErrNotFound, id)
	}
	return e, nil
}

func sessionFromEnt(e *ent.Session) *Session {
	return &Session{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		Name:          e.Name,
		Content:       e.Content,
		ContentHash:   e.ContentHash,
		QuestionType:  question.Type(e.QuestionType),
		QuestionCount: e.QuestionCount,
		Provider:      e.Provider,
		Status:        question.Status(e.Status),
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
