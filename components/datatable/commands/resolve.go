package commands

import (
	"context"
	"errors"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

// tableResolver finds the mounted table a command targets. *datatable.Service satisfies it.
type tableResolver interface {
	Handle(ctx context.Context, session, table string) (datatable.Handle, error)
}

func resolve(ctx context.Context, resolver tableResolver, ref datatable.TableRef, name string) (datatable.Handle, error) {
	if resolver == nil {
		return nil, errors.New(name + " command requires service")
	}
	return resolver.Handle(ctx, ref.Session, ref.Table)
}
