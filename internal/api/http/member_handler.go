package http

import (
	"net/http"

	"membership-portal-backend/internal/domain"
	"membership-portal-backend/internal/service"
)

type MemberHandler struct {
	memberSvc service.MemberService
}

func NewMemberHandler(memberSvc service.MemberService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

type memberDetailResponse struct {
	Member     *domain.User      `json:"member"`
	Activities []domain.Activity `json:"activities"`
}

type approveRegistrationRequest struct {
	MembershipType domain.MembershipType `json:"membershipType"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.MemberFilter{
		Status: domain.MemberStatus(q.Get("status")),
		Role:   domain.Role(q.Get("role")),
		Search: q.Get("search"),
	}
	var err error
	if filter.Page, err = queryInt32(r, "page"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt32(r, "limit"); err != nil {
		writeError(w, r, err)
		return
	}

	users, page, err := h.memberSvc.ListMembers(r.Context(), ActorFromContext(r.Context()), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paginated[domain.User]{Data: users, Pagination: page})
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, activities, err := h.memberSvc.GetMember(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberDetailResponse{Member: user, Activities: activities})
}

func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMemberInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.memberSvc.CreateMember(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *MemberHandler) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req approveRegistrationRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	user, err := h.memberSvc.ApproveRegistration(r.Context(), ActorFromContext(r.Context()), id, req.MembershipType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *MemberHandler) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reasonRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	user, err := h.memberSvc.RejectRegistration(r.Context(), ActorFromContext(r.Context()), id, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
