package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/contacts-api/internal/api/middleware"
	"github.com/dom/contacts-api/internal/domain"
	"github.com/dom/contacts-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type ContactRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Birthday    string `json:"birthday"` // YYYY-MM-DD
}

type ContactResponse struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Birthday    string `json:"birthday"`
	OwnerID     uint   `json:"ownerId"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	input, ok := decodeContactInput(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Create(r.Context(), user, input)
	if err != nil {
		if errors.Is(err, domain.ErrContactLimit) {
			http.Error(w, "Contact limit reached", http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toContactResponse(contact))
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 10)

	contacts, err := h.contactService.List(r.Context(), user, skip, limit)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Get(r.Context(), user, id)
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	input, ok := decodeContactInput(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Update(r.Context(), user, id, input)
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contactService.Delete(r.Context(), user, id)
	if err != nil {
		h.writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	contacts, err := h.contactService.Search(r.Context(), user, query)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (h *ContactHandler) UpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	contacts, err := h.contactService.UpcomingBirthdays(r.Context(), user)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (h *ContactHandler) writeContactError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrContactNotFound) {
		http.Error(w, "Contact not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func decodeContactInput(w http.ResponseWriter, r *http.Request) (service.ContactInput, bool) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return service.ContactInput{}, false
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.PhoneNumber == "" {
		http.Error(w, "First name, last name, email and phone number are required", http.StatusBadRequest)
		return service.ContactInput{}, false
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		http.Error(w, "Birthday must be YYYY-MM-DD", http.StatusBadRequest)
		return service.ContactInput{}, false
	}

	return service.ContactInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Birthday:    birthday,
	}, true
}

func contactID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "Invalid contact id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}

func toContactResponse(contact *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:          contact.ID,
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		Email:       contact.Email,
		PhoneNumber: contact.PhoneNumber,
		Birthday:    time.Time(contact.Birthday).Format("2006-01-02"),
		OwnerID:     contact.OwnerID,
	}
}

func toContactResponses(contacts []*domain.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	return out
}
