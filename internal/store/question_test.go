package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abiraja/quizforge/internal/question"
)

func newTestSession(t *testing.T, s *Store) *Session {
	t.Helper()
	sess, err := s.Sessions().Create(context.Background(), alice, testSessionData())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestQuestionPositionsAreDense(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	for want := 1; want <= 3; want++ {
		q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
		if err != nil {
			t.Fatalf("create %d: %v", want, err)
		}
		if q.Position != want {
			t.Errorf("position = %d, want %d", q.Position, want)
		}
	}
}

func TestQuestionPositionNeverReused(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	qs, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData(), mcqData()})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if err := s.Questions().Delete(ctx, alice, qs[2].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The retired position 3 must not be handed out again.
	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Position != 4 {
		t.Errorf("position = %d, want 4", q.Position)
	}
}

func TestQuestionCreateBatchAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	bad := mcqData()
	bad.Payload = json.RawMessage(`{"correct_answer":"true"}`)

	if _, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), bad, mcqData()}); err == nil {
		t.Fatal("expected error for invalid payload in batch")
	}

	qs, err := s.Questions().BySession(ctx, alice, sess.ID, true)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("questions persisted = %d, want 0 (all-or-nothing)", len(qs))
	}
}

func TestQuestionBySessionFiltersDeleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	qs, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData()})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if err := s.Questions().Delete(ctx, alice, qs[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	active, err := s.Questions().BySession(ctx, alice, sess.ID, false)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active = %d, want 1", len(active))
	}

	all, err := s.Questions().BySession(ctx, alice, sess.ID, true)
	if err != nil {
		t.Fatalf("by session (all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}
}

func TestQuestionUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	text := "What gas does photosynthesis release?"
	hard := question.DifficultyHard
	payload := json.RawMessage(`{"options":{"a":"oxygen","b":"methane","c":"helium"},"correct_answer":"a"}`)

	updated, err := s.Questions().Update(ctx, alice, q.ID, QuestionPatch{
		Text:       &text,
		Payload:    payload,
		Difficulty: &hard,
		Tags:       []string{"biology"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Text != text {
		t.Errorf("text = %q", updated.Text)
	}
	if updated.Difficulty != question.DifficultyHard {
		t.Errorf("difficulty = %s, want hard", updated.Difficulty)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "biology" {
		t.Errorf("tags = %v", updated.Tags)
	}
}

func TestQuestionUpdateRejectsBadPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A true/false body must not be accepted for an mcq question.
	bad := json.RawMessage(`{"correct_answer":"true"}`)
	if _, err := s.Questions().Update(ctx, alice, q.ID, QuestionPatch{Payload: bad}); err == nil {
		t.Error("expected error for payload/type mismatch")
	}
}

func TestQuestionReorder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	qs, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData(), mcqData()})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	order := []int{qs[2].ID, qs[0].ID, qs[1].ID}
	if err := s.Questions().Reorder(ctx, alice, sess.ID, order); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got, err := s.Questions().BySession(ctx, alice, sess.ID, false)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	for i, q := range got {
		if q.ID != order[i] {
			t.Errorf("position %d holds question %d, want %d", i+1, q.ID, order[i])
		}
		if q.Position != i+1 {
			t.Errorf("position = %d, want %d", q.Position, i+1)
		}
	}
}

func TestQuestionReorderValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	qs, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData()})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	tests := []struct {
		name string
		ids  []int
	}{
		{"missing a question", []int{qs[0].ID}},
		{"duplicate ID", []int{qs[0].ID, qs[0].ID}},
		{"foreign ID", []int{qs[0].ID, 99999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Questions().Reorder(ctx, alice, sess.ID, tt.ids); !errors.Is(err, ErrInvalidReorder) {
				t.Errorf("reorder = %v, want ErrInvalidReorder", err)
			}
		})
	}
}

func TestQuestionOwnershipFollowsSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Questions().Get(ctx, bob, q.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("bob get = %v, want ErrNotOwner", err)
	}
	if _, err := s.Questions().Create(ctx, bob, sess.ID, mcqData()); !errors.Is(err, ErrNotOwner) {
		t.Errorf("bob create = %v, want ErrNotOwner", err)
	}
	if _, err := s.Questions().Get(ctx, admin, q.ID); err != nil {
		t.Errorf("elevated get = %v, want nil", err)
	}
}

func TestQuestionCreateInDeletedSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	if err := s.Sessions().Delete(ctx, alice, sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.Questions().Create(ctx, alice, sess.ID, mcqData()); !errors.Is(err, ErrNotFound) {
		t.Errorf("create in deleted session = %v, want ErrNotFound", err)
	}
}

func TestQuestionWritesInDeletedSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Sessions().Delete(ctx, alice, sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	text := "too late"
	if _, err := s.Questions().Update(ctx, alice, q.ID, QuestionPatch{Text: &text}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update = %v, want ErrNotFound", err)
	}
	if err := s.Questions().Delete(ctx, alice, q.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete = %v, want ErrNotFound", err)
	}
	if err := s.Questions().Reorder(ctx, alice, sess.ID, []int{q.ID}); !errors.Is(err, ErrNotFound) {
		t.Errorf("reorder = %v, want ErrNotFound", err)
	}
}

func TestDeletedQuestionRejectsWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Questions().Delete(ctx, alice, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	text := "too late"
	if _, err := s.Questions().Update(ctx, alice, q.ID, QuestionPatch{Text: &text}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of deleted question = %v, want ErrNotFound", err)
	}
	if err := s.Questions().Delete(ctx, alice, q.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestQuestionCreatorAndSource(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sess := newTestSession(t, s)

	q, err := s.Questions().Create(ctx, alice, sess.ID, mcqData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.CreatorID != "alice" {
		t.Errorf("creator = %q, want alice", q.CreatorID)
	}
	if q.Source != question.SourceManual {
		t.Errorf("source = %s, want manual default", q.Source)
	}
	if q.Difficulty != question.DifficultyMedium {
		t.Errorf("difficulty = %s, want medium default", q.Difficulty)
	}
}
