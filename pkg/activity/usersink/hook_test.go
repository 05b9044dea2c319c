package usersink

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/activity"
)

type recordingSink struct {
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()

	event := activity.Event{
		Verb:           "rows.delete",
		ActorID:        actorID.String(),
		UserID:         userID.String(),
		TenantID:       tenantID.String(),
		ObjectType:     "table",
		ObjectID:       "users",
		Channel:        "dashboard",
		DefinitionCode: "datatable:delete",
		Recipients:     []string{"ops@example.com"},
		Metadata: map[string]any{
			"rows": 3,
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != userID || record.TenantID != tenantID {
		t.Fatalf("unexpected ids: %+v", record)
	}
	if record.Verb != "rows.delete" || record.ObjectType != "table" || record.ObjectID != "users" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "dashboard" {
		t.Fatalf("expected channel dashboard got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["definition_code"] != "datatable:delete" {
		t.Fatalf("expected definition_code metadata got %v", record.Data["definition_code"])
	}
	if record.Data["rows"] != 3 {
		t.Fatalf("expected rows metadata got %v", record.Data["rows"])
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "ops@example.com" {
		t.Fatalf("expected recipients metadata got %v", record.Data["recipients"])
	}
}

func TestHookNotifyInvalidIDsBecomeNil(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}
	_ = hook.Notify(context.Background(), activity.Event{Verb: "export", ActorID: "cli", ObjectType: "table", ObjectID: "users"})
	if len(sink.records) != 1 || sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor id for non-uuid actor, got %+v", sink.records)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookRequiresSink(t *testing.T) {
	if err := (Hook{}).Notify(context.Background(), activity.Event{Verb: "v"}); err == nil {
		t.Fatalf("expected error without sink")
	}
}

func TestLogSinkAcceptsRecords(t *testing.T) {
	hook := Hook{Sink: LogSink{}}
	err := hook.Notify(context.Background(), activity.Event{
		Verb:       "rows.delete",
		ObjectType: "table",
		ObjectID:   "users",
		Metadata:   map[string]any{"rows": 3},
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
}
