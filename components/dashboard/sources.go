package dashboard

import (
	"context"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// TableBuckets aggregates through the tables mounted for session, so charts follow
// the filter that session has typed. A freshly mounted table is waited on so a pending
// load never reads as missing data.
func TableBuckets(tables *datatable.Service, session string) BucketSource {
	return func(ctx context.Context, table, groupBy, metric string) ([]datatable.Bucket, error) {
		handle, err := tables.Handle(ctx, session, table)
		if err != nil {
			return nil, err
		}
		if err := handle.Wait(ctx); err != nil {
			return nil, err
		}
		return handle.Aggregate(groupBy, metric)
	}
}
