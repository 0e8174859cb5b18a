package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var input models.BookingInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.CreateBooking(r.Context(), bookerID, input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	ownerID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("approved"))
	approve, err := strconv.ParseBool(raw)
	if err != nil {
		s.writeServiceError(w, r, domain.Validation("approved must be true or false, got %q", raw))
		return
	}
	booking, err := s.svc.Bookings.DecideBooking(r.Context(), bookingID, ownerID, approve)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	booking, err := s.svc.Bookings.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleBookerBookings(w http.ResponseWriter, r *http.Request) {
	bookings, ok := s.listBookings(w, r, s.svc.Bookings.GetBookerBookings)
	if ok {
		writeJSON(w, http.StatusOK, bookings)
	}
}

func (s *HTTPServer) handleOwnerBookings(w http.ResponseWriter, r *http.Request) {
	bookings, ok := s.listBookings(w, r, s.svc.Bookings.GetOwnerBookings)
	if ok {
		writeJSON(w, http.StatusOK, bookings)
	}
}

type bookingLister func(ctx context.Context, userID int64, state string, page models.Page) ([]*models.Booking, error)

// listBookings reads caller, state and page, and writes the error itself
// when something is wrong.
func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) ([]*models.Booking, bool) {
	userID, err := s.auth.UserID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	page, err := s.parsePage(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	bookings, err := list(r.Context(), userID, r.URL.Query().Get("state"), page)
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	return bookings, true
}
