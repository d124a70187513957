package api

import (
	"log/slog"
	"net/http"

	"github.com/enginemock/enginemock/internal/catalog"
	"github.com/enginemock/enginemock/internal/observability"
	"github.com/enginemock/enginemock/internal/query"
	"github.com/enginemock/enginemock/internal/query/sample"
)

// mdlRequest is shared by dry-run and preview. The inline manifest is
// accepted and ignored.
type mdlRequest struct {
	Manifest map[string]any `json:"manifest"`
	SQL      *string        `json:"sql"`
	Limit    *int           `json:"limit"`
}

type previewColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type previewResponse struct {
	Columns       []previewColumn `json:"columns"`
	Data          [][]any         `json:"data"`
	RowCount      int             `json:"rowCount"`
	ExecutionTime string          `json:"executionTime"`
	SQL           string          `json:"sql"`
}

func decodeMDLRequest(w http.ResponseWriter, r *http.Request) (mdlRequest, string, error) {
	var request mdlRequest
	if err := decodeJSONBody(w, r, &request); err != nil {
		return mdlRequest{}, "", err
	}
	sqlText, err := requireSQL(request.SQL)
	if err != nil {
		return mdlRequest{}, "", err
	}
	return request, sqlText, nil
}

func handleMDLDryRun(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	_, sqlText, err := decodeMDLRequest(w, r)
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}

	logInfo(deps, r, "dry run request", slog.String("method", r.Method))
	logSQL(deps, r, sqlText)

	err = query.ValidatePlan(sqlText)
	observability.ObserveValidation("mdl_dry_run", validationOutcome(err))
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "valid", Message: "SQL query is valid"})
}

func handlePreview(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	request, sqlText, err := decodeMDLRequest(w, r)
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	limit := query.DefaultRowLimit
	if request.Limit != nil {
		limit = *request.Limit
	}

	logInfo(deps, r, "preview request", slog.String("method", r.Method), slog.Int("limit", limit))
	logSQL(deps, r, sqlText)

	result, err := deps.QueryEngine.Execute(r.Context(), query.Request{SQL: sqlText, RowLimit: limit})
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "preview execution failed", slog.Any("error", err))
		}
		writeDetail(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.ObserveSampleRows("mdl_preview", result.RowCount())

	columns := make([]previewColumn, 0, len(result.Columns))
	for _, column := range result.Columns {
		columns = append(columns, previewColumn{Name: column.Name, Type: column.Type})
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Columns:       columns,
		Data:          nonNilRows(result.Rows),
		RowCount:      result.RowCount(),
		ExecutionTime: result.ExecutionTime,
		SQL:           sqlText,
	})
}

func handleGetManifest(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	logInfo(deps, r, "manifest request")
	writeJSON(w, http.StatusOK, deps.Manifest.Get())
}

func handleReplaceManifest(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var manifest catalog.Document
	if err := decodeJSONBody(w, r, &manifest); err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	if manifest == nil {
		writeRequestFailure(w, r, &requestError{detail: "manifest must be a JSON object"})
		return
	}

	logInfo(deps, r, "manifest update request", slog.Int("keys", len(manifest)))
	deps.Manifest.Replace(manifest)
	observability.ObserveManifestUpdate(len(manifest))
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Manifest updated"})
}

func handleMDLSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	logInfo(deps, r, "schema request")
	writeJSON(w, http.StatusOK, sample.MDLSchema())
}
