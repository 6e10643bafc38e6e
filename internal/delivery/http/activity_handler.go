package http

import (
	"context"
	"net/http"

	"campusconnect/internal/entity"

	"github.com/go-chi/chi/v5"
)

// Method Post /activities
func (h *HttpHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	activity, err := h.activityUc.CreateActivity(r.Context(), userId(r), req)
	if err != nil {
		writeError(w, r, "create activity", err)
		return
	}
	writeSuccess(w, http.StatusCreated, activity)
}

// Method Get /activities?community=name
func (h *HttpHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	community := r.URL.Query().Get("community")
	if community == "" {
		writeBadRequest(w, "community is required")
		return
	}

	activities, err := h.activityUc.ListActivities(r.Context(), community)
	if err != nil {
		writeError(w, r, "list activities", err)
		return
	}
	writeSuccess(w, http.StatusOK, activities)
}

// Method Get /activities/volunteered
func (h *HttpHandler) ListVolunteered(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activityUc.ListVolunteered(r.Context(), userId(r))
	if err != nil {
		writeError(w, r, "list volunteered", err)
		return
	}
	writeSuccess(w, http.StatusOK, activities)
}

// Method Post /activities/:activityId/volunteer
func (h *HttpHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	if err := h.activityUc.Volunteer(r.Context(), chi.URLParam(r, "activityId"), userId(r)); err != nil {
		writeError(w, r, "volunteer", err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "signed up"})
}

// Method Post /assignments
func (h *HttpHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req entity.AssignRequest
	if !decodeBody(w, r, &req) {
		return
	}

	assignment, err := h.activityUc.Assign(r.Context(), userId(r), req)
	if err != nil {
		writeError(w, r, "assign", err)
		return
	}
	writeSuccess(w, http.StatusCreated, assignment)
}

// Method Get /assignments/mine
func (h *HttpHandler) ListMyAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.activityUc.ListAssignments(r.Context(), userId(r))
	if err != nil {
		writeError(w, r, "list assignments", err)
		return
	}
	writeSuccess(w, http.StatusOK, assignments)
}

// Method Get /assignments/community
func (h *HttpHandler) ListCommunityAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.activityUc.ListCommunityAssignments(r.Context(), userId(r))
	if err != nil {
		writeError(w, r, "list community assignments", err)
		return
	}
	writeSuccess(w, http.StatusOK, assignments)
}

// Method Post /assignments/:assignmentId/{submit,approve,reject}
func (h *HttpHandler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	h.moveAssignment(w, r, "submit assignment", h.activityUc.Submit)
}

func (h *HttpHandler) ApproveAssignment(w http.ResponseWriter, r *http.Request) {
	h.moveAssignment(w, r, "approve assignment", h.activityUc.Approve)
}

func (h *HttpHandler) RejectAssignment(w http.ResponseWriter, r *http.Request) {
	h.moveAssignment(w, r, "reject assignment", h.activityUc.Reject)
}

func (h *HttpHandler) moveAssignment(w http.ResponseWriter, r *http.Request, op string, move func(context.Context, string, string) (entity.Assignment, error)) {
	assignment, err := move(r.Context(), chi.URLParam(r, "assignmentId"), userId(r))
	if err != nil {
		writeError(w, r, op, err)
		return
	}
	writeSuccess(w, http.StatusOK, assignment)
}
