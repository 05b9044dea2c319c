package usersink

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"

	"github.com/abdurrahmanshkh/admybrand-dashboard/pkg/logging"
)

// LogSink writes activity records to the request logger. It stands in for a
// persistent go-users sink in local runs.
type LogSink struct{}

var _ Sink = LogSink{}

// Log implements Sink.
func (LogSink) Log(ctx context.Context, record types.ActivityRecord) error {
	logging.FromContext(ctx).Info("activity",
		"verb", record.Verb,
		"actor", record.ActorID.String(),
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
		"data", record.Data,
	)
	return nil
}
