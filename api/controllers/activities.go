package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/api/validators"
	"github.com/clinmeta/cmdr-backend/internal/activities"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

type createActivityPayload struct {
	LibraryName     string  `json:"library_name" validate:"required"`
	Name            string  `json:"name"`
	Definition      string  `json:"definition"`
	Abbreviation    string  `json:"abbreviation"`
	GroupingTermUID *string `json:"grouping_term_uid"`
}

type editActivityPayload struct {
	ChangeDescription string  `json:"change_description"`
	Name              string  `json:"name"`
	Definition        string  `json:"definition"`
	Abbreviation      string  `json:"abbreviation"`
	GroupingTermUID   *string `json:"grouping_term_uid"`
}

// ActivityCreate starts a new activity draft, optionally grouped under a term.
func ActivityCreate(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload createActivityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, author, activities.CreateInput{
			LibraryName:     payload.LibraryName,
			Name:            payload.Name,
			Definition:      payload.Definition,
			Abbreviation:    payload.Abbreviation,
			GroupingTermUID: payload.GroupingTermUID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ActivityList(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter := activities.ListFilter{
			LibraryName: validators.QueryString(r, "library"),
			Status:      validators.QueryString(r, "status"),
		}

		items, next, err := svc.List(ctx, params, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, items, next)
	}
}

func ActivityGet(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		dto, err := svc.Get(ctx, chi.URLParam(r, "uid"), activities.GetOptions{
			Version: validators.QueryString(r, "version"),
			Status:  validators.QueryString(r, "status"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ActivityVersions(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		rows, err := svc.Versions(ctx, chi.URLParam(r, "uid"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ActivityActions(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		actions, err := svc.PossibleActions(ctx, chi.URLParam(r, "uid"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, actions)
	}
}

func ActivityEdit(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload editActivityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Edit(ctx, chi.URLParam(r, "uid"), author, activities.EditInput{
			ChangeDescription: payload.ChangeDescription,
			Name:              payload.Name,
			Definition:        payload.Definition,
			Abbreviation:      payload.Abbreviation,
			GroupingTermUID:   payload.GroupingTermUID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ActivityApprove(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		dto, err := svc.Approve(ctx, chi.URLParam(r, "uid"), author)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ActivityNewVersion(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload transitionPayload
		if err := decodeOptionalBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.NewVersion(ctx, chi.URLParam(r, "uid"), author, payload.ChangeDescription)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ActivityInactivate(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		dto, err := svc.Inactivate(ctx, chi.URLParam(r, "uid"), author)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ActivityReactivate(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		dto, err := svc.Reactivate(ctx, chi.URLParam(r, "uid"), author)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ActivityDelete(svc activities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		if err := svc.Delete(ctx, chi.URLParam(r, "uid")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
