package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"finlog/pkg/finlog"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Entries

func (h *handler) getEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := finlog.EntryFilter{
		EntryType: query.Get("entry_type"),
		Category:  query.Get("category"),
		Source:    query.Get("source"),
		Tag:       query.Get("tag"),
		Year:      parseInt(query.Get("year")),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		Limit:     parseIntDefault(query.Get("limit"), 100),
		Offset:    parseIntDefault(query.Get("offset"), 0),
	}
	limit, offset := normalizeLimitOffset(filter.Limit, filter.Offset)
	filter.Limit = limit
	filter.Offset = offset

	owner := ownerFrom(r)
	result, err := h.core.GetEntries(r.Context(), owner, filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if query.Get("paged") != "1" {
		writeJSON(w, http.StatusOK, result)
		return
	}
	total, err := h.core.GetEntryCount(r.Context(), owner, filter)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{
		Items:  result,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *handler) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.core.GetEntry(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handler) addEntry(w http.ResponseWriter, r *http.Request) {
	var payload addEntryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.core.AddEntry(r.Context(), ownerFrom(r), payload.request())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	var payload updateEntryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.core.UpdateEntry(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), payload.request())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeleteEntry(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *handler) importEntries(w http.ResponseWriter, r *http.Request) {
	var payload importEntriesPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.ImportEntries(r.Context(), ownerFrom(r), payload.Rows)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccessWithMessage(w, "imported", result)
}

// Labels

func (h *handler) getLabels(kind finlog.LabelKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		labels, err := h.core.GetLabels(r.Context(), ownerFrom(r), kind)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, labels)
	}
}

func (h *handler) addLabel(kind finlog.LabelKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload labelPayload
		if err := decodeJSON(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		label, err := h.core.AddLabel(r.Context(), ownerFrom(r), kind, payload.Name)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, label)
	}
}

func (h *handler) deleteLabel(kind finlog.LabelKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.core.DeleteLabel(r.Context(), ownerFrom(r), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, err)
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, string(kind)+" not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Goals

func (h *handler) getGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.core.GetGoals(r.Context(), ownerFrom(r))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *handler) addGoal(w http.ResponseWriter, r *http.Request) {
	var payload addGoalPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.core.AddGoal(r.Context(), ownerFrom(r), finlog.AddGoalRequest{
		Timeframe:      payload.Timeframe,
		TargetType:     payload.TargetType,
		TargetValueUSD: payload.TargetValueUSD,
		StartDate:      payload.StartDate,
		EndDate:        payload.EndDate,
		Category:       payload.Category,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id})
}

func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeleteGoal(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "goal not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *handler) getGoalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.core.GoalProgress(r.Context(), ownerFrom(r))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Snapshots

func (h *handler) getSnapshots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	snapshots, err := h.core.GetSnapshots(r.Context(), ownerFrom(r), query.Get("start"), query.Get("end"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (h *handler) recordSnapshot(w http.ResponseWriter, r *http.Request) {
	var payload snapshotPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, err := h.core.RecordSnapshot(r.Context(), ownerFrom(r), payload.SnapshotDate, payload.TotalValueUSD)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) deriveSnapshots(w http.ResponseWriter, r *http.Request) {
	derived, err := h.core.DeriveAndStoreSnapshots(r.Context(), ownerFrom(r))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, deriveSnapshotsResponse{Points: len(derived), Snapshots: derived})
}

// Activity logs

func (h *handler) getActivityLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseIntDefault(query.Get("limit"), 50)
	offset := parseIntDefault(query.Get("offset"), 0)
	logs, err := h.core.GetActivityLogs(r.Context(), ownerFrom(r), limit, offset)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseInt(value string) int {
	if value == "" {
		return 0
	}
	i, _ := strconv.Atoi(value)
	return i
}

func parseIntDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func normalizeLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
