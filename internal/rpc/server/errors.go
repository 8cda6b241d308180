// Package server registers one huma resource group per model in the data
// model over the shared *service.Services, one handlers file per resource
// and one huma.Register call per operation.
package server

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/orchestrator-core/controlplane/internal/apperr"
)

// mapErr translates an apperr-classified error into the matching huma HTTP
// error for its kind.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch apperr.KindOf(err) {
	case apperr.InvalidArgument:
		return huma.Error400BadRequest(err.Error())
	case apperr.NotFound:
		return huma.Error404NotFound(err.Error())
	case apperr.Conflict:
		return huma.Error409Conflict(err.Error())
	case apperr.Unavailable:
		return huma.Error503ServiceUnavailable(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}

// IDInput is the shared path-parameter shape of every get/delete-by-id
// operation.
type IDInput struct {
	ID string `path:"id" doc:"Entity id"`
}

// OperationOutput wraps the operation_id every mutating call returns, so
// clients (and the CLI) can correlate a write with the event it produced.
type OperationOutput struct {
	Body struct {
		OperationID string `json:"operationId"`
	}
}
