// Package handlers реализует HTTP-обработчики эндпоинта синхронизации.
// Один generic обработчик обслуживает все сущности: имя сущности приходит
// path value, область видимости — заголовком X-Club-ID.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/matchday/internal/server/storage"
	"github.com/iudanet/matchday/internal/validation"
	"github.com/iudanet/matchday/pkg/api"
)

const (
	defaultPageLimit = 500
	maxPageLimit     = 1000
)

// SyncHandler handles the per-entity sync endpoints.
type SyncHandler struct {
	logger  *slog.Logger
	storage storage.RecordStorage
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(logger *slog.Logger, st storage.RecordStorage) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		storage: st,
	}
}

// Register wires the sync routes onto the mux.
func (h *SyncHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/sync/{entity}", h.Select)
	mux.HandleFunc("POST /api/v1/sync/{entity}", h.Upsert)
	mux.HandleFunc("POST /api/v1/sync/{entity}/delete", h.Delete)
	mux.HandleFunc("GET /api/v1/sync/{entity}/ids", h.IDs)
}

// scope извлекает сущность и клуб из запроса. Пустой или кривой клуб — 400.
func (h *SyncHandler) scope(w http.ResponseWriter, r *http.Request) (entity, clubID string, ok bool) {
	entity = r.PathValue("entity")
	clubID = r.Header.Get("X-Club-ID")
	if clubID == "" {
		h.writeError(w, http.StatusBadRequest, "bad request", "missing X-Club-ID header")
		return "", "", false
	}
	if err := validation.ValidateClubID(clubID); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad request", err.Error())
		return "", "", false
	}
	return entity, clubID, true
}

// Select обрабатывает GET /api/v1/sync/{entity}?since=&limit=&offset=
// Возвращает строки с updated_at строго больше since, включая tombstones,
// по возрастанию updated_at.
func (h *SyncHandler) Select(w http.ResponseWriter, r *http.Request) {
	entity, clubID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var since time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		var err error
		since, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			h.logger.Warn("invalid since parameter", "since", s, "error", err)
			h.writeError(w, http.StatusBadRequest, "bad request", "invalid since parameter")
			return
		}
	}

	limit := defaultPageLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "bad request", "invalid limit parameter")
			return
		}
		limit = min(n, maxPageLimit)
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "bad request", "invalid offset parameter")
			return
		}
		offset = n
	}

	recs, err := h.storage.SelectSince(r.Context(), entity, clubID, since, limit, offset)
	if err != nil {
		h.storageError(w, entity, err)
		return
	}

	rows := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		row, err := wireRow(rec)
		if err != nil {
			h.logger.Error("failed to decode stored doc", "entity", entity, "id", rec.ID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal error", "")
			return
		}
		rows = append(rows, row)
	}

	h.writeJSON(w, http.StatusOK, api.SelectResponse[map[string]any]{Rows: rows})
}

// Upsert обрабатывает POST /api/v1/sync/{entity}
// Идемпотентный апсерт по id; сервер назначает created_at/updated_at.
func (h *SyncHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	entity, clubID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req api.UpsertRequest[json.RawMessage]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode upsert request", "error", err)
		h.writeError(w, http.StatusBadRequest, "bad request", "invalid request body")
		return
	}

	recs := make([]storage.Record, 0, len(req.Rows))
	for i, raw := range req.Rows {
		var key struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &key); err != nil || key.ID == "" {
			h.writeError(w, http.StatusBadRequest, "bad request", "row "+strconv.Itoa(i)+": missing id")
			return
		}
		recs = append(recs, storage.Record{ID: key.ID, Doc: raw})
	}

	acks, err := h.storage.Upsert(r.Context(), entity, clubID, recs)
	if err != nil {
		h.storageError(w, entity, err)
		return
	}

	resp := api.UpsertResponse{Acks: make([]api.Ack, 0, len(acks))}
	for _, ack := range acks {
		resp.Acks = append(resp.Acks, api.Ack{
			ID:        ack.ID,
			CreatedAt: ack.CreatedAt,
			UpdatedAt: ack.UpdatedAt,
		})
	}

	h.logger.Info("upsert completed", "entity", entity, "club_id", clubID, "rows", len(recs))
	h.writeJSON(w, http.StatusOK, resp)
}

// Delete обрабатывает POST /api/v1/sync/{entity}/delete
// Soft delete: ставит tombstone, сохраняя видимость удаления для
// остальных клиентов.
func (h *SyncHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entity, clubID, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req api.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode delete request", "error", err)
		h.writeError(w, http.StatusBadRequest, "bad request", "invalid request body")
		return
	}

	affected, err := h.storage.SoftDelete(r.Context(), entity, clubID, req.IDs)
	if err != nil {
		h.storageError(w, entity, err)
		return
	}

	h.logger.Info("delete completed", "entity", entity, "club_id", clubID,
		"requested", len(req.IDs), "affected", len(affected))
	h.writeJSON(w, http.StatusOK, api.DeleteResponse{IDs: affected})
}

// IDs обрабатывает GET /api/v1/sync/{entity}/ids — полный скан живых id.
func (h *SyncHandler) IDs(w http.ResponseWriter, r *http.Request) {
	entity, clubID, ok := h.scope(w, r)
	if !ok {
		return
	}

	ids, err := h.storage.LiveIDs(r.Context(), entity, clubID)
	if err != nil {
		h.storageError(w, entity, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	h.writeJSON(w, http.StatusOK, api.IDsResponse{IDs: ids})
}

// wireRow собирает wire-представление строки: доменные поля из документа
// плюс авторитетные серверные колонки поверх.
func wireRow(rec storage.Record) (map[string]any, error) {
	row := map[string]any{}
	if err := json.Unmarshal(rec.Doc, &row); err != nil {
		return nil, err
	}
	row["id"] = rec.ID
	row["club_id"] = rec.ClubID
	row["created_at"] = rec.CreatedAt.Format(time.RFC3339Nano)
	row["updated_at"] = rec.UpdatedAt.Format(time.RFC3339Nano)
	if rec.DeletedAt != nil {
		row["deleted_at"] = rec.DeletedAt.Format(time.RFC3339Nano)
	} else {
		row["deleted_at"] = nil
	}
	return row, nil
}

func (h *SyncHandler) storageError(w http.ResponseWriter, entity string, err error) {
	switch {
	case errors.Is(err, storage.ErrUnknownEntity):
		h.writeError(w, http.StatusNotFound, "not found", "unknown entity: "+entity)
	case errors.Is(err, storage.ErrUniqueViolation):
		h.writeError(w, http.StatusConflict, "conflict", "duplicate order_no in session")
	default:
		h.logger.Error("storage error", "entity", entity, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *SyncHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *SyncHandler) writeError(w http.ResponseWriter, status int, errText, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Error: errText, Message: message})
}
