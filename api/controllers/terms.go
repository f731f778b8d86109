package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/api/validators"
	"github.com/clinmeta/cmdr-backend/internal/terms"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

type createTermPayload struct {
	LibraryName     string   `json:"library_name" validate:"required"`
	CodelistUID     string   `json:"codelist_uid"`
	Name            string   `json:"name"`
	SubmissionValue string   `json:"submission_value"`
	PreferredTerm   string   `json:"preferred_term"`
	Definition      string   `json:"definition"`
	Synonyms        []string `json:"synonyms"`
}

type editTermPayload struct {
	ChangeDescription string   `json:"change_description"`
	Name              string   `json:"name"`
	SubmissionValue   string   `json:"submission_value"`
	PreferredTerm     string   `json:"preferred_term"`
	Definition        string   `json:"definition"`
	Synonyms          []string `json:"synonyms"`
}

// TermCreate starts a new term draft inside its owning codelist.
func TermCreate(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload createTermPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, author, terms.CreateInput{
			LibraryName:     payload.LibraryName,
			CodelistUID:     payload.CodelistUID,
			Name:            payload.Name,
			SubmissionValue: payload.SubmissionValue,
			PreferredTerm:   payload.PreferredTerm,
			Definition:      payload.Definition,
			Synonyms:        payload.Synonyms,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func TermList(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter := terms.ListFilter{
			LibraryName: validators.QueryString(r, "library"),
			CodelistUID: validators.QueryString(r, "codelist_uid"),
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

func TermGet(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
			return
		}

		dto, err := svc.Get(ctx, chi.URLParam(r, "uid"), terms.GetOptions{
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

func TermVersions(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
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

func TermActions(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
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

func TermEdit(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload editTermPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Edit(ctx, chi.URLParam(r, "uid"), author, terms.EditInput{
			ChangeDescription: payload.ChangeDescription,
			Name:              payload.Name,
			SubmissionValue:   payload.SubmissionValue,
			PreferredTerm:     payload.PreferredTerm,
			Definition:        payload.Definition,
			Synonyms:          payload.Synonyms,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func TermApprove(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
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

func TermNewVersion(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
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

func TermInactivate(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
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

func TermReactivate(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
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

// TermDelete always reports the canonical unsupported-delete failure; the
// route exists so clients get the shaped message instead of a bare 405.
func TermDelete(svc terms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "term service unavailable"))
			return
		}

		if err := svc.Delete(ctx, chi.URLParam(r, "uid")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
