package controllers

import (
	"context"
	"net/http"

	"github.com/clinmeta/cmdr-backend/api/middleware"
	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/api/validators"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
	"github.com/clinmeta/cmdr-backend/pkg/pagination"
)

// requireAuthor pulls the author identity seeded by the auth middleware. A
// missing author means the handler was mounted outside the auth chain.
func requireAuthor(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	id := middleware.AuthorIDFromContext(ctx)
	if id == "" {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "author context missing"))
		return "", false
	}
	return id, true
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.QueryString(r, "cursor"),
	}, nil
}

// transitionPayload carries the optional change note on version checkouts.
type transitionPayload struct {
	ChangeDescription string `json:"change_description"`
}

// decodeOptionalBody decodes the request body when one was sent. Lifecycle
// transitions accept an empty body.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return validators.DecodeJSONBody(r, dest)
}
