package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/question"
)

func mcqData() QuestionData {
	return QuestionData{
		Type:    question.TypeMCQ,
		Text:    "What does photosynthesis produce?",
		Payload: json.RawMessage(`{"options":{"a":"glucose","b":"iron"},"correct_answer":"a"}`),
	}
}

func TestSessionCreate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if sess.OwnerID != "alice" {
		t.Errorf("owner = %q, want alice", sess.OwnerID)
	}
	if sess.ContentHash != content.Fingerprint(testContent()) {
		t.Errorf("content hash not the fingerprint of the content")
	}
	if sess.Version != 1 {
		t.Errorf("version = %d, want 1", sess.Version)
	}
	if sess.Status != question.StatusActive {
		t.Errorf("status = %s, want active", sess.Status)
	}
}

func TestSessionCreateRejectsBadContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	data := testSessionData()
	data.Content = "too short"
	if _, err := s.Sessions().Create(ctx, alice, data); !errors.Is(err, content.ErrTooShort) {
		t.Errorf("create = %v, want ErrTooShort", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Sessions().Get(ctx, bob, sess.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("bob get = %v, want ErrNotOwner", err)
	}
	if _, err := s.Sessions().Get(ctx, admin, sess.ID); err != nil {
		t.Errorf("elevated get = %v, want nil", err)
	}
	if _, err := s.Sessions().Get(ctx, alice, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing = %v, want ErrNotFound", err)
	}
}

func TestSessionList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.Sessions().Create(ctx, alice, testSessionData()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := s.Sessions().Create(ctx, bob, testSessionData()); err != nil {
		t.Fatalf("create: %v", err)
	}

	aliceSessions, err := s.Sessions().List(ctx, alice, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(aliceSessions) != 2 {
		t.Errorf("alice sees %d sessions, want 2", len(aliceSessions))
	}

	adminSessions, err := s.Sessions().List(ctx, admin, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(adminSessions) != 3 {
		t.Errorf("admin sees %d sessions, want 3", len(adminSessions))
	}
}

func TestSessionUpdateRecomputesHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newContent := testContent() + " The Calvin cycle fixes carbon dioxide."
	updated, err := s.Sessions().Update(ctx, alice, sess.ID, SessionPatch{Content: &newContent})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.ContentHash != content.Fingerprint(newContent) {
		t.Error("content hash not recomputed on content change")
	}
	if updated.ContentHash == sess.ContentHash {
		t.Error("content hash unchanged after content change")
	}
	if updated.Version != sess.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, sess.Version+1)
	}
}

func TestSessionUpdateVersionConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "renamed"
	if _, err := s.Sessions().Update(ctx, alice, sess.ID, SessionPatch{Name: &name}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// A second writer still holding version 1 must be rejected.
	stale := SessionPatch{Name: &name, ExpectedVersion: sess.Version}
	if _, err := s.Sessions().Update(ctx, alice, sess.ID, stale); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale update = %v, want ErrVersionConflict", err)
	}
}

func TestSessionDeleteCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData()}); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	if err := s.Sessions().Delete(ctx, alice, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.Sessions().Get(ctx, alice, sess.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.Status != question.StatusDeleted {
		t.Errorf("session status = %s, want deleted", got.Status)
	}

	qs, err := s.Questions().BySession(ctx, alice, sess.ID, true)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	for _, q := range qs {
		if q.Status != question.StatusDeleted {
			t.Errorf("question %d status = %s, want deleted", q.ID, q.Status)
		}
	}

	active, err := s.Sessions().List(ctx, alice, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, a := range active {
		if a.ID == sess.ID {
			t.Error("deleted session still listed without includeDeleted")
		}
	}
}

func TestDeletedSessionRejectsWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData()}); err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if err := s.Sessions().Delete(ctx, alice, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	name := "too late"
	if _, err := s.Sessions().Update(ctx, alice, sess.ID, SessionPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update after delete = %v, want ErrNotFound", err)
	}
	if _, err := s.Sessions().Duplicate(ctx, alice, sess.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("duplicate after delete = %v, want ErrNotFound", err)
	}
	if err := s.Sessions().Delete(ctx, alice, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}

	// Regeneration must not plant active questions inside a deleted
	// session.
	if _, err := s.Sessions().ReplaceQuestions(ctx, alice, sess.ID, 0, "mock", []QuestionData{mcqData()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("replace after delete = %v, want ErrNotFound", err)
	}
	active, err := s.Questions().BySession(ctx, alice, sess.ID, false)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("deleted session holds %d active questions, want 0", len(active))
	}
}

func TestSessionDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, err := s.Sessions().Create(ctx, alice, testSessionData())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	qs, err := s.Questions().CreateBatch(ctx, alice, sess.ID, []QuestionData{mcqData(), mcqData(), mcqData()})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	// Delete the middle question; the copy must skip it.
	if err := s.Questions().Delete(ctx, alice, qs[1].ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}

	dup, err := s.Sessions().Duplicate(ctx, alice, sess.ID, "")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	if dup.ID == sess.ID {
		t.Fatal("duplicate returned the source session")
	}
	if dup.Name != sess.Name+" (copy)" {
		t.Errorf("name = %q, want %q", dup.Name, sess.Name+" (copy)")
	}
	if dup.ContentHash != sess.ContentHash {
		t.Error("duplicate content hash differs from source")
	}
	if dup.Version != 1 {
		t.Errorf("duplicate version = %d, want 1", dup.Version)
	}

	copied, err := s.Questions().BySession(ctx, alice, dup.ID, false)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if len(copied) != 2 {
		t.Fatalf("copied %d questions, want 2 (active only)", len(copied))
	}
	for i, q := range copied {
		if q.Position != i+1 {
			t.Errorf("copied position[%d] = %d, want %d", i, q.Position, i+1)
		}
	}
}

func TestCreateWithQuestionsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bad := mcqData()
	bad.Payload = json.RawMessage(`{"options":{"a":"only one"},"correct_answer":"a"}`)

	_, _, err := s.Sessions().CreateWithQuestions(ctx, alice, testSessionData(),
		[]QuestionData{mcqData(), bad})
	if err == nil {
		t.Fatal("expected error for invalid payload in batch")
	}

	// The whole transaction must roll back, including the session.
	count, err := s.Client().Session.Query().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("sessions persisted = %d, want 0", count)
	}
}

func TestReplaceQuestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sess, qs, err := s.Sessions().CreateWithQuestions(ctx, alice, testSessionData(),
		[]QuestionData{mcqData(), mcqData()})
	if err != nil {
		t.Fatalf("create with questions: %v", err)
	}

	replacement := mcqData()
	newQs, err := s.Sessions().ReplaceQuestions(ctx, alice, sess.ID, sess.Version, "mock", []QuestionData{replacement})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if len(newQs) != 1 {
		t.Fatalf("replaced with %d questions, want 1", len(newQs))
	}
	// Positions continue past the retired batch, never reused.
	if newQs[0].Position != len(qs)+1 {
		t.Errorf("new position = %d, want %d", newQs[0].Position, len(qs)+1)
	}

	active, err := s.Questions().BySession(ctx, alice, sess.ID, false)
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active questions = %d, want 1", len(active))
	}

	updated, err := s.Sessions().Get(ctx, alice, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Provider != "mock" {
		t.Errorf("provider = %q, want mock", updated.Provider)
	}
	if updated.Version != sess.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, sess.Version+1)
	}

	// A stale version must be rejected.
	_, err = s.Sessions().ReplaceQuestions(ctx, alice, sess.ID, sess.Version, "mock", []QuestionData{mcqData()})
	if !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale replace = %v, want ErrVersionConflict", err)
	}
}
