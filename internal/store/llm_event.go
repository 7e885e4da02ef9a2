package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/abiraja/quizforge/ent"
	entevent "github.com/abiraja/quizforge/ent/llmrequestevent"
)

// eventRepo implements EventRepo backed by ent and the global sequence
// counter.
type eventRepo struct {
	client *ent.Client
	seq    *sequenceCounter
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.LLMRequestEvent.Create().
		SetSequence(seqNum).
		SetRequestID(data.RequestID).
		SetProvider(data.Provider).
		SetModel(data.Model).
		SetPurpose(data.Purpose).
		SetInputTokens(data.InputTokens).
		SetOutputTokens(data.OutputTokens).
		SetLatencyMs(data.LatencyMs).
		SetSuccess(data.Success).
		SetErrorMessage(data.ErrorMessage).
		SetRequestBody(data.Request).
		SetResponseBody(data.Response).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) LLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	q := r.client.LLMRequestEvent.Query()
	if opts.After > 0 {
		q = q.Where(entevent.SequenceGT(opts.After))
	}
	if opts.Provider != "" {
		q = q.Where(entevent.Provider(opts.Provider))
	}
	if opts.Purpose != "" {
		q = q.Where(entevent.Purpose(opts.Purpose))
	}
	if opts.FailedOnly {
		q = q.Where(entevent.Success(false))
	}
	q = q.Order(ent.Desc(entevent.FieldSequence))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	rows, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}

	out := make([]LLMRequestEvent, len(rows))
	for i, e := range rows {
		out[i] = eventFromEnt(e)
	}
	return out, nil
}

func (r *eventRepo) LLMRequestByID(ctx context.Context, requestID string) (*LLMRequestEvent, error) {
	e, err := r.client.LLMRequestEvent.Query().
		Where(entevent.RequestID(requestID)).
		Order(ent.Desc(entevent.FieldSequence)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("get LLM request event: %w", err)
	}
	ev := eventFromEnt(e)
	return &ev, nil
}

func (r *eventRepo) UsageByPurpose(ctx context.Context) ([]UsageStat, error) {
	var rows []struct {
		Purpose      string `json:"purpose"`
		Requests     int    `json:"requests"`
		InputTokens  int    `json:"input_tokens"`
		OutputTokens int    `json:"output_tokens"`
	}
	err := r.client.LLMRequestEvent.Query().
		GroupBy(entevent.FieldPurpose).
		Aggregate(usageAggregates()...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage by purpose: %w", err)
	}

	out := make([]UsageStat, len(rows))
	for i, row := range rows {
		out[i] = UsageStat{
			Key:          row.Purpose,
			Requests:     row.Requests,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
		}
	}
	sortUsage(out)
	return out, nil
}

func (r *eventRepo) UsageByModel(ctx context.Context) ([]UsageStat, error) {
	var rows []struct {
		Model        string `json:"model"`
		Requests     int    `json:"requests"`
		InputTokens  int    `json:"input_tokens"`
		OutputTokens int    `json:"output_tokens"`
	}
	err := r.client.LLMRequestEvent.Query().
		GroupBy(entevent.FieldModel).
		Aggregate(usageAggregates()...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage by model: %w", err)
	}

	out := make([]UsageStat, len(rows))
	for i, row := range rows {
		out[i] = UsageStat{
			Key:          row.Model,
			Requests:     row.Requests,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
		}
	}
	sortUsage(out)
	return out, nil
}

func usageAggregates() []ent.AggregateFunc {
	return []ent.AggregateFunc{
		ent.As(ent.Count(), "requests"),
		ent.As(ent.Sum(entevent.FieldInputTokens), "input_tokens"),
		ent.As(ent.Sum(entevent.FieldOutputTokens), "output_tokens"),
	}
}

func sortUsage(stats []UsageStat) {
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
}

func eventFromEnt(e *ent.LLMRequestEvent) LLMRequestEvent {
	return LLMRequestEvent{
		ID:        e.ID,
		Sequence:  e.Sequence,
		Timestamp: e.Timestamp,
		LLMRequestEventData: LLMRequestEventData{
			RequestID:    e.RequestID,
			Provider:     e.Provider,
			Model:        e.Model,
			Purpose:      e.Purpose,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			ErrorMessage: e.ErrorMessage,
			Request:      e.RequestBody,
			Response:     e.ResponseBody,
		},
	}
}
