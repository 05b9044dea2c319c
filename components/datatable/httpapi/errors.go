package httpapi

import (
	"errors"
	"net/http"

	"github.com/abdurrahmanshkh/admybrand-dashboard/components/datatable"
)

var badRequest = []error{
	datatable.ErrInvalidRequest,
	datatable.ErrUnknownColumn,
	datatable.ErrColumnNotSortable,
	datatable.ErrColumnNotHideable,
	datatable.ErrInvalidPageSize,
	datatable.ErrUnknownRow,
	datatable.ErrInvalidScope,
	datatable.ErrInvalidFormat,
	datatable.ErrSessionRequired,
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, datatable.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, datatable.ErrEmptySelection):
		return http.StatusConflict
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
