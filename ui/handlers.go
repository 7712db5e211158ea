package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"spendlens/domain/core"
	"spendlens/internal/errors"
	"spendlens/internal/ingest"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload ingests one or more uploaded export files. Individual
// file failures are reported per file, not as a request failure.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		a.writeError(w, errors.InvalidInput("could not parse multipart form"))
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		a.writeError(w, errors.InvalidInput("no files uploaded"))
		return
	}

	var files []ingest.UploadFile
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			a.writeError(w, errors.Wrap(err, "could not open uploaded file"))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			a.writeError(w, errors.Wrap(err, "could not read uploaded file"))
			return
		}
		files = append(files, ingest.UploadFile{Filename: header.Filename, Data: data})
	}

	results := a.ingest.IngestBatch(r.Context(), files)
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r, "start", "end")
	if err != nil {
		a.writeError(w, err)
		return
	}

	var platforms []string
	if raw := r.URL.Query().Get("platforms"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				platforms = append(platforms, p)
			}
		}
	}

	data, err := a.dashboard.Dashboard(r.Context(), start, end, platforms)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, data)
}

func (a *App) handleComparePeriods(w http.ResponseWriter, r *http.Request) {
	curStart, curEnd, err := dateRange(r, "current_start", "current_end")
	if err != nil {
		a.writeError(w, err)
		return
	}
	prevStart, prevEnd, err := dateRange(r, "previous_start", "previous_end")
	if err != nil {
		a.writeError(w, err)
		return
	}

	comparison, err := a.dashboard.ComparePeriods(r.Context(), curStart, curEnd, prevStart, prevEnd)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, comparison)
}

func (a *App) handleCampaignOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := a.dashboard.CampaignOverview(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"campaigns": overview})
}

func (a *App) handleUnclassified(w http.ResponseWriter, r *http.Request) {
	campaigns, err := a.dashboard.UnclassifiedCampaigns(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"campaigns": campaigns})
}

type classifyRequest struct {
	CampaignType string `json:"campaign_type"`
	ChannelType  string `json:"channel_type"`
}

func (a *App) handleClassify(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("invalid request body"))
		return
	}

	if err := a.dashboard.ClassifyCampaign(r.Context(), name, req.CampaignType, req.ChannelType); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "classified"})
}

func (a *App) handleDeleteClassification(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.dashboard.RemoveClassification(r.Context(), name); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) handleImports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	history, err := a.dashboard.ImportHistory(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"imports": history})
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r, "start", "end")
	if err != nil {
		a.writeError(w, err)
		return
	}
	report, err := a.dashboard.Report(r.Context(), start, end)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(renderReportHTML(report))
		return
	}
	a.writeJSON(w, http.StatusOK, report)
}

func dateRange(r *http.Request, startKey, endKey string) (core.Day, core.Day, error) {
	start, err := core.ParseDay(r.URL.Query().Get(startKey))
	if err != nil {
		return "", "", errors.InvalidInput(startKey + " must be a YYYY-MM-DD date")
	}
	end, err := core.ParseDay(r.URL.Query().Get(endKey))
	if err != nil {
		return "", "", errors.InvalidInput(endKey + " must be a YYYY-MM-DD date")
	}
	return start, end, nil
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("[ui] could not encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeParseFailed:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		a.logger.Error("[ui] request failed: %v", err)
	}
	a.writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
