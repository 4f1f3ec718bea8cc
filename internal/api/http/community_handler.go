package http

import (
	"net/http"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/service"
)

type ActivityHandler struct {
	activitySvc service.ActivityService
}

func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activities, err := h.activitySvc.ListActivities(r.Context(), domain.ActivityFilter{
		Status: domain.ActivityStatus(q.Get("status")),
		Type:   domain.ActivityType(q.Get("type")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	activity, err := h.activitySvc.GetActivity(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req service.ActivityInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	activity, err := h.activitySvc.CreateActivity(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.ActivityUpdateInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	activity, err := h.activitySvc.UpdateActivity(r.Context(), ActorFromContext(r.Context()), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) JoinActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	activity, err := h.activitySvc.JoinActivity(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.activitySvc.DeleteActivity(r.Context(), ActorFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "activity deleted"})
}

// BulletinHandler serves announcements and the resource library.
type BulletinHandler struct {
	bulletinSvc service.BulletinService
}

func NewBulletinHandler(bulletinSvc service.BulletinService) *BulletinHandler {
	return &BulletinHandler{bulletinSvc: bulletinSvc}
}

func (h *BulletinHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.bulletinSvc.ListAnnouncements(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}

func (h *BulletinHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req service.AnnouncementInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	announcement, err := h.bulletinSvc.CreateAnnouncement(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, announcement)
}

func (h *BulletinHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.bulletinSvc.ListResources(r.Context(), optionalActor(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

func (h *BulletinHandler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req service.ResourceInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resource, err := h.bulletinSvc.CreateResource(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}
