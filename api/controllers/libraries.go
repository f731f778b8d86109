package controllers

import (
	"net/http"

	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/api/validators"
	"github.com/clinmeta/cmdr-backend/internal/libraries"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

type createLibraryPayload struct {
	Name       string `json:"name" validate:"required"`
	IsEditable bool   `json:"is_editable"`
}

// LibraryList returns every library with its editability flag.
func LibraryList(svc libraries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "library service unavailable"))
			return
		}

		libs, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, libs)
	}
}

func LibraryCreate(svc libraries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "library service unavailable"))
			return
		}

		var payload createLibraryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		lib, err := svc.Create(ctx, libraries.CreateLibraryInput{
			Name:       payload.Name,
			IsEditable: payload.IsEditable,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lib)
	}
}
