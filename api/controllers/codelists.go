package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/api/validators"
	"github.com/clinmeta/cmdr-backend/internal/codelists"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

type createCodelistPayload struct {
	LibraryName      string `json:"library_name" validate:"required"`
	Name             string `json:"name"`
	SubmissionValue  string `json:"submission_value"`
	NCIPreferredName string `json:"nci_preferred_name"`
	Definition       string `json:"definition"`
	Extensible       bool   `json:"extensible"`
}

type editCodelistPayload struct {
	ChangeDescription string `json:"change_description"`
	Name              string `json:"name"`
	SubmissionValue   string `json:"submission_value"`
	NCIPreferredName  string `json:"nci_preferred_name"`
	Definition        string `json:"definition"`
	Extensible        bool   `json:"extensible"`
}

// CodelistCreate starts a new codelist as a 0.1 draft in the target library.
func CodelistCreate(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload createCodelistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, author, codelists.CreateInput{
			LibraryName:      payload.LibraryName,
			Name:             payload.Name,
			SubmissionValue:  payload.SubmissionValue,
			NCIPreferredName: payload.NCIPreferredName,
			Definition:       payload.Definition,
			Extensible:       payload.Extensible,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func CodelistList(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter := codelists.ListFilter{
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

// CodelistGet reads the current state, or a pinned version/status when the
// matching query parameter is present.
func CodelistGet(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
			return
		}

		dto, err := svc.Get(ctx, chi.URLParam(r, "uid"), codelists.GetOptions{
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

func CodelistVersions(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
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

func CodelistActions(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
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

func CodelistEdit(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
			return
		}
		author, ok := requireAuthor(ctx, logg, w)
		if !ok {
			return
		}

		var payload editCodelistPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Edit(ctx, chi.URLParam(r, "uid"), author, codelists.EditInput{
			ChangeDescription: payload.ChangeDescription,
			Name:              payload.Name,
			SubmissionValue:   payload.SubmissionValue,
			NCIPreferredName:  payload.NCIPreferredName,
			Definition:        payload.Definition,
			Extensible:        payload.Extensible,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CodelistApprove(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
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

// CodelistNewVersion checks out a fresh draft from the final version.
func CodelistNewVersion(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
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

func CodelistInactivate(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
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

func CodelistReactivate(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
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

// CodelistDelete removes a codelist that never left its initial draft.
func CodelistDelete(svc codelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "codelist service unavailable"))
			return
		}

		if err := svc.Delete(ctx, chi.URLParam(r, "uid")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
