package api

import (
	"log/slog"
	"net/http"

	"github.com/enginemock/enginemock/internal/observability"
	"github.com/enginemock/enginemock/internal/query"
	"github.com/enginemock/enginemock/internal/query/sample"
)

// connectorRequest covers both query and dry-plan bodies. manifestStr and
// connectionInfo are accepted for compatibility and otherwise ignored.
type connectorRequest struct {
	SQL            *string        `json:"sql"`
	ManifestStr    *string        `json:"manifestStr"`
	ConnectionInfo map[string]any `json:"connectionInfo"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type connectorQueryResponse struct {
	Columns       []string `json:"columns"`
	Data          [][]any  `json:"data"`
	RowCount      int      `json:"rowCount"`
	ExecutionTime string   `json:"executionTime"`
}

func handleConnectorQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	dataSource := r.PathValue("data_source")
	dryRun, err := parseBoolParam(r, "dryRun", false)
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit", query.DefaultRowLimit)
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}

	var request connectorRequest
	if err := decodeJSONBody(w, r, &request); err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	sqlText, err := requireSQL(request.SQL)
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}

	logInfo(deps, r, "query request",
		slog.String("data_source", dataSource),
		slog.Bool("dry_run", dryRun),
		slog.Int("limit", limit),
		slog.Bool("request_connection_info", request.ConnectionInfo != nil),
		slog.Int("configured_connection_keys", len(deps.ConnectionInfo.Get())),
	)
	logSQL(deps, r, sqlText)

	if dryRun {
		err := query.CheckNotEmpty(sqlText)
		observability.ObserveValidation("connector_query", validationOutcome(err))
		if err != nil {
			writeRequestFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "valid", Message: "SQL syntax is valid"})
		return
	}

	result, err := deps.QueryEngine.Execute(r.Context(), query.Request{SQL: sqlText, RowLimit: limit})
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "query execution failed",
				slog.String("data_source", dataSource),
				slog.Any("error", err),
			)
		}
		writeDetail(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.ObserveSampleRows("connector_query", result.RowCount())

	writeJSON(w, http.StatusOK, connectorQueryResponse{
		Columns:       result.ColumnNames(),
		Data:          nonNilRows(result.Rows),
		RowCount:      result.RowCount(),
		ExecutionTime: result.ExecutionTime,
	})
}

func handleDryPlan(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	dataSource := r.PathValue("data_source")

	var request connectorRequest
	if err := decodeJSONBody(w, r, &request); err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	sqlText, err := requireSQL(request.SQL)
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}

	logInfo(deps, r, "dry plan request", slog.String("data_source", dataSource))
	logSQL(deps, r, sqlText)

	err = query.ValidatePlan(sqlText)
	observability.ObserveValidation("connector_dry_plan", validationOutcome(err))
	if err != nil {
		writeRequestFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "valid", Message: "Query plan is valid"})
}

func handleFunctions(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	logInfo(deps, r, "functions request", slog.String("data_source", r.PathValue("data_source")))
	writeJSON(w, http.StatusOK, sample.Functions())
}

func handleConnectorSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	logInfo(deps, r, "schema request", slog.String("data_source", r.PathValue("data_source")))
	writeJSON(w, http.StatusOK, sample.ConnectorSchema())
}

func nonNilRows(rows [][]any) [][]any {
	if rows == nil {
		return [][]any{}
	}
	return rows
}
