package generate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abiraja/quizforge/internal/content"
	"github.com/abiraja/quizforge/internal/provider"
	"github.com/abiraja/quizforge/internal/question"
	"github.com/abiraja/quizforge/internal/store"
)

var actor = question.Actor{ID: "teacher-1"}

func testService(t *testing.T) (*Service, *store.Store, *provider.MockProvider) {
	t.Helper()

	st, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := provider.DefaultConfig()
	cfg.Default = "mock"
	d, err := provider.NewDispatcher(cfg, nil)
	require.NoError(t, err)

	mock := provider.NewMockProvider()
	d.Register(mock)

	return NewService(d, st.Sessions()), st, mock
}

func testRequest() Request {
	return Request{
		Actor:      actor,
		Content:    strings.Repeat("The cell membrane regulates what enters and leaves the cell. ", 3),
		Type:       question.TypeMCQ,
		Count:      3,
		Difficulty: question.DifficultyMedium,
	}
}

func mcqRaw(text string) question.Raw {
	return question.Raw{
		Text:       text,
		Payload:    json.RawMessage(`{"options":{"a":"membrane","b":"nucleus"},"correct_answer":"a"}`),
		Confidence: 0.8,
	}
}

func TestGenerateCreatesSession(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	mock.AddResult(provider.MockResult{
		Items: []question.Raw{mcqRaw("q1?"), mcqRaw("q2?"), mcqRaw("q3?")},
		Usage: provider.Usage{InputTokens: 100, OutputTokens: 300},
	})

	res, err := svc.Generate(ctx, testRequest())
	require.NoError(t, err)
	require.NotZero(t, res.SessionID)
	require.Equal(t, 3, res.CountRequested)
	require.Equal(t, 3, res.CountReturned)
	require.Equal(t, "mock", res.Provider)

	sess, err := st.Sessions().Get(ctx, actor, res.SessionID)
	require.NoError(t, err)
	require.Equal(t, "mock", sess.Provider)
	require.Equal(t, question.TypeMCQ, sess.QuestionType)

	qs, err := st.Questions().BySession(ctx, actor, res.SessionID, false)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	for i, q := range qs {
		require.Equal(t, question.SourceAI, q.Source)
		require.Equal(t, i+1, q.Position)
		require.NotNil(t, q.Confidence)
	}
}

func TestGenerateRejectsInvalidContent(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	req := testRequest()
	req.Content = "   "
	_, err := svc.Generate(ctx, req)
	require.ErrorIs(t, err, content.ErrEmpty)

	// Validation failures must never reach the provider or the store.
	require.Zero(t, mock.CallCount())
	count, err := st.Client().Session.Query().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestGenerateRejectsBadCount(t *testing.T) {
	svc, _, mock := testService(t)

	req := testRequest()
	req.Count = MaxBatch + 1
	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	require.Zero(t, mock.CallCount())
}

func TestGenerateKeepsValidSubset(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	mock.AddResult(provider.MockResult{
		Items: []question.Raw{
			mcqRaw("good one?"),
			{Text: "bad payload?", Payload: json.RawMessage(`{"correct_answer":"true"}`)},
			mcqRaw("another good one?"),
		},
	})

	res, err := svc.Generate(ctx, testRequest())
	require.NoError(t, err)
	require.Equal(t, 3, res.CountRequested)
	require.Equal(t, 2, res.CountReturned)

	qs, err := st.Questions().BySession(ctx, actor, res.SessionID, false)
	require.NoError(t, err)
	require.Len(t, qs, 2)
}

func TestGenerateProviderFailurePersistsNothing(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	mock.AddResult(provider.MockResult{Err: &provider.ErrInvalidResponse{}})

	_, err := svc.Generate(ctx, testRequest())
	require.Error(t, err)

	count, err := st.Client().Session.Query().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count, "failed dispatch must leave the store untouched")
}

func TestGenerateRegenerateReplaces(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	mock.AddResult(provider.MockResult{
		Items: []question.Raw{mcqRaw("first batch 1?"), mcqRaw("first batch 2?")},
	})
	first, err := svc.Generate(ctx, testRequest())
	require.NoError(t, err)

	mock.AddResult(provider.MockResult{
		Items: []question.Raw{mcqRaw("second batch 1?")},
	})
	// Content omitted: the stored session content is reused.
	res, err := svc.Generate(ctx, Request{
		Actor:     actor,
		Type:      question.TypeMCQ,
		Count:     1,
		SessionID: first.SessionID,
	})
	require.NoError(t, err)
	require.Equal(t, first.SessionID, res.SessionID)

	active, err := st.Questions().BySession(ctx, actor, first.SessionID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "second batch 1?", active[0].Text)

	all, err := st.Questions().BySession(ctx, actor, first.SessionID, true)
	require.NoError(t, err)
	require.Len(t, all, 3, "replaced questions are retired, not erased")
}

func TestGenerateRegenerateVersionConflict(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	mock.AddResult(provider.MockResult{Items: []question.Raw{mcqRaw("q?")}})
	first, err := svc.Generate(ctx, testRequest())
	require.NoError(t, err)

	sess, err := st.Sessions().Get(ctx, actor, first.SessionID)
	require.NoError(t, err)

	// A concurrent writer bumps the version.
	name := "renamed meanwhile"
	_, err = st.Sessions().Update(ctx, actor, sess.ID, store.SessionPatch{Name: &name})
	require.NoError(t, err)

	mock.AddResult(provider.MockResult{Items: []question.Raw{mcqRaw("late?")}})
	_, err = svc.Generate(ctx, Request{
		Actor:          actor,
		Type:           question.TypeMCQ,
		Count:          1,
		SessionID:      sess.ID,
		SessionVersion: sess.Version,
	})
	require.ErrorIs(t, err, store.ErrVersionConflict)
}

func TestGenerateDefaultsAndSessionName(t *testing.T) {
	svc, st, mock := testService(t)
	ctx := context.Background()

	mock.AddResult(provider.MockResult{Items: []question.Raw{mcqRaw("q?")}})

	req := testRequest()
	req.Count = 0 // default applies
	req.Difficulty = ""
	res, err := svc.Generate(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 5, res.CountRequested)

	sess, err := st.Sessions().Get(ctx, actor, res.SessionID)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Name)
	require.Equal(t, 5, sess.QuestionCount)
}
