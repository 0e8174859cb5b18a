package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var input models.ItemRequestInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	request, err := s.svc.Requests.CreateRequest(r.Context(), userID, input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	requests, err := s.svc.Requests.GetOwnRequests(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := s.parsePage(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	requests, err := s.svc.Requests.GetOtherRequests(r.Context(), userID, page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	request, err := s.svc.Requests.GetRequest(r.Context(), userID, requestID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
