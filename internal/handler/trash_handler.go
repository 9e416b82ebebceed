package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"bizrecords/internal/model"
	"bizrecords/internal/service"
	"bizrecords/pkg/apierror"
)

const maxTrashBodyBytes = 1 << 20

type TrashHandler struct {
	trash   *service.TrashService
	router  *service.RestorationRouter
	display *service.DisplayInfoResolver
	audit   *service.AuditService
}

func NewTrashHandler(trash *service.TrashService, router *service.RestorationRouter, display *service.DisplayInfoResolver, audit *service.AuditService) *TrashHandler {
	return &TrashHandler{trash: trash, router: router, display: display, audit: audit}
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.trash.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if typeFilter := strings.TrimSpace(r.URL.Query().Get("type")); typeFilter != "" {
		records = lo.Filter(records, func(rec model.TrashRecord, _ int) bool {
			return string(rec.OriginalType) == typeFilter
		})
	}

	items := h.display.ResolveAll(records)
	meta := &model.Meta{
		Total: len(items),
		Types: lo.CountValuesBy(records, func(rec model.TrashRecord) model.OriginalType { return rec.OriginalType }),
	}
	writeSuccess(w, http.StatusOK, model.TrashListData{Items: items}, meta)
}

func (h *TrashHandler) Get(w http.ResponseWriter, r *http.Request) {
	trashID := chi.URLParam(r, "id")

	record, err := h.trash.Get(r.Context(), trashID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, h.display.Resolve(record), nil)
}

func (h *TrashHandler) Move(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.MoveToTrashRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTrashBodyBytes))
	// keep numeric ids exact; float64 would lose digits past 2^53
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apierror.PayloadTooLarge(maxTrashBodyBytes))
			return
		}
		writeError(w, apierror.BadRequest("invalid JSON body", err.Error()))
		return
	}

	actor := actorFromRequest(r)
	result, err := h.trash.MoveToTrash(r.Context(), payload.Payload, payload.Type, actor)
	if err != nil {
		h.audit.Log(r.Context(), service.AuditActionMove, actor, "failed", string(payload.Type), nil, nil, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), service.AuditActionMove, actor, "success", service.AuditResource(payload.Type, result.TrashID), nil, result, "")

	status := http.StatusCreated
	if result.AlreadyTrashed {
		status = http.StatusOK
	}
	writeSuccess(w, status, result, nil)
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	trashID := chi.URLParam(r, "id")
	actor := actorFromRequest(r)

	result, err := h.router.Restore(r.Context(), trashID, actor)
	if err != nil {
		// a non-empty result means the entity came back but the trash record stayed
		h.audit.Log(r.Context(), service.AuditActionRestore, actor, "failed", trashID, nil, result, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), service.AuditActionRestore, actor, "success", service.AuditResource(result.OriginalType, trashID), nil, result, "")
	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *TrashHandler) Delete(w http.ResponseWriter, r *http.Request) {
	trashID := chi.URLParam(r, "id")
	actor := actorFromRequest(r)

	before, err := h.trash.Get(r.Context(), trashID)
	if err != nil && !errors.Is(err, model.ErrTrashItemNotFound) {
		writeError(w, err)
		return
	}

	if err := h.trash.PermanentlyDelete(r.Context(), trashID, actor); err != nil {
		h.audit.Log(r.Context(), service.AuditActionDelete, actor, "failed", trashID, nil, nil, err.Error())
		writeError(w, err)
		return
	}

	resource := trashID
	if before.ID != "" {
		resource = service.AuditResource(before.OriginalType, trashID)
	}
	h.audit.Log(r.Context(), service.AuditActionDelete, actor, "success", resource, before, nil, "")
	writeSuccess(w, http.StatusOK, map[string]string{"id": trashID}, nil)
}

func (h *TrashHandler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	count, err := h.trash.PurgeAll(r.Context(), actor)
	if err != nil {
		h.audit.Log(r.Context(), service.AuditActionPurge, actor, "failed", "", nil, nil, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), service.AuditActionPurge, actor, "success", "", nil, map[string]int{"count": count}, "")
	writeSuccess(w, http.StatusOK, map[string]int{"count": count}, nil)
}
