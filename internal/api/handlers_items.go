package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var input models.ItemInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.svc.Items.CreateItem(r.Context(), ownerID, input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var patch models.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.svc.Items.UpdateItem(r.Context(), ownerID, itemID, patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.svc.Items.DeleteItem(r.Context(), ownerID, itemID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	item, err := s.svc.Items.GetItem(r.Context(), userID, itemID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleOwnerItems(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	page, err := s.parsePage(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items, err := s.svc.Items.GetOwnerItems(r.Context(), ownerID, page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSearchItems does not need a caller: search is public.
func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	page, err := s.parsePage(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	items, err := s.svc.Items.SearchItems(r.Context(), r.URL.Query().Get("text"), page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	authorID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var input models.CommentInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	comment, err := s.svc.Items.AddComment(r.Context(), authorID, itemID, input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
