package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type Handlers struct {
	Catalog  *app.CatalogService
	Bookings *app.BookingService
	Sessions *app.SessionService
	Profiles *app.ProfileService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/search", h.searchHotels)
		r.Get("/hotels/{id}", h.getHotel)

		r.Post("/auth/signup", h.signUp)
		r.Post("/auth/signin", h.signIn)
		r.Post("/auth/signout", h.signOut)

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(h.Sessions))
			r.Get("/auth/me", h.me)
			r.Get("/profile", h.getProfile)
			r.Put("/profile", h.updateProfile)
			r.Get("/bookings/quote", h.quote)
			r.Post("/bookings", h.createBooking)
			r.Get("/bookings", h.listBookings)
			r.Get("/bookings/{id}", h.getBooking)
			r.Patch("/bookings/{id}", h.rescheduleBooking)
			r.Post("/bookings/{id}/cancel", h.cancelBooking)
		})
	})
}

// ---- shared plumbing ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain failures onto the problem taxonomy. Every failure
// resolves to a visible state with a recovery path: 400s are fixable input,
// 401 redirects to auth, 404 links back to the catalog, 5xx retries.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var fe *domain.FetchError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", ve.Error())
	case errors.Is(err, domain.ErrAuthRequired):
		writeProblem(w, http.StatusUnauthorized, "Authentication Required", "sign in to continue")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, domain.ErrEmailTaken):
		writeProblem(w, http.StatusConflict, "Email Taken", "email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Invalid Credentials", "invalid email or password")
	case errors.As(err, &fe):
		log.Error().Err(err).Msg("catalog unavailable")
		writeProblem(w, http.StatusBadGateway, "Catalog Unavailable", "try again shortly")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "try again shortly")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("body", "malformed JSON")
	}
	return nil
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// optional date query param; "" stays zero.
func dateParam(r *http.Request, key string) (time.Time, error) {
	return parseOptionalDate(key, r.URL.Query().Get(key))
}

func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.Validation(field, "must be a yyyy-MM-dd date")
	}
	return t, nil
}

// ---- wire types ----

type bookingResponse struct {
	ID           string  `json:"id"`
	HotelID      int64   `json:"hotelId"`
	HotelName    string  `json:"hotelName"`
	HotelImage   string  `json:"hotelImage,omitempty"`
	HotelCity    string  `json:"hotelCity,omitempty"`
	HotelCountry string  `json:"hotelCountry,omitempty"`
	GuestName    string  `json:"guestName"`
	GuestEmail   string  `json:"guestEmail"`
	GuestPhone   string  `json:"guestPhone"`
	CheckIn      string  `json:"checkIn"`
	CheckOut     string  `json:"checkOut"`
	Guests       int     `json:"guests"`
	TotalPrice   float64 `json:"totalPrice"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		HotelID:      b.HotelID,
		HotelName:    b.HotelName,
		HotelImage:   b.HotelImage,
		HotelCity:    b.HotelCity,
		HotelCountry: b.HotelCountry,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		GuestPhone:   b.GuestPhone,
		CheckIn:      domain.FormatDate(b.CheckIn),
		CheckOut:     domain.FormatDate(b.CheckOut),
		Guests:       b.Guests,
		TotalPrice:   b.TotalPrice,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
}

func toSessionResponse(s domain.Session, u domain.User) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:    u.ID,
		Email:     u.Email,
	}
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	hotels, err := h.Catalog.ListHotels(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func filtersFromQuery(r *http.Request) (domain.SearchFilters, error) {
	var f domain.SearchFilters
	q := r.URL.Query()
	if v := q.Get("city"); v != "" {
		f.City = &v
	}
	for _, key := range []string{"checkIn", "checkOut"} {
		if v := q.Get(key); v != "" {
			if _, err := domain.ParseDate(v); err != nil {
				return domain.SearchFilters{}, domain.Validation(key, "must be a yyyy-MM-dd date")
			}
			if key == "checkIn" {
				f.CheckIn = &v
			} else {
				f.CheckOut = &v
			}
		}
	}
	if v := q.Get("guests"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return domain.SearchFilters{}, domain.Validation("guests", "must be a positive integer")
		}
		f.Guests = &n
	}
	if v := q.Get("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return domain.SearchFilters{}, domain.Validation("minPrice", "must be a non-negative number")
		}
		f.MinPrice = &p
	}
	if v := q.Get("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return domain.SearchFilters{}, domain.Validation("maxPrice", "must be a non-negative number")
		}
		f.MaxPrice = &p
	}
	return f, nil
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Catalog.SearchHotels(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	hotel, err := h.Catalog.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(hotel)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

// ---- auth ----

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, u, err := h.Sessions.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess, u))
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess, u, err := h.Sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess, u))
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"userId": u.ID, "email": u.Email})
}

// ---- profile ----

func (h *Handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	p, err := h.Profiles.GetProfile(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	var req struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.Profiles.UpdateProfile(r.Context(), u.ID, req.FullName, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ---- bookings ----

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())

	hotelID, err := strconv.ParseInt(r.URL.Query().Get("hotelId"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotelId must be a number")
		return
	}
	checkIn, err := dateParam(r, "checkIn")
	if err != nil {
		writeError(w, err)
		return
	}
	checkOut, err := dateParam(r, "checkOut")
	if err != nil {
		writeError(w, err)
		return
	}
	guests := 1
	if v := r.URL.Query().Get("guests"); v != "" {
		if guests, err = strconv.Atoi(v); err != nil || guests < 1 {
			writeProblem(w, http.StatusBadRequest, "Validation Failed", "guests must be a positive integer")
			return
		}
	}

	q, err := h.Bookings.PrepareBooking(r.Context(), u.ID, hotelID, checkIn, checkOut, guests)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	var req struct {
		HotelID    int64  `json:"hotelId"`
		GuestName  string `json:"guestName"`
		GuestEmail string `json:"guestEmail"`
		GuestPhone string `json:"guestPhone"`
		CheckIn    string `json:"checkIn"`
		CheckOut   string `json:"checkOut"`
		Guests     int    `json:"guests"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	checkIn, err := parseOptionalDate("checkIn", req.CheckIn)
	if err != nil {
		writeError(w, err)
		return
	}
	checkOut, err := parseOptionalDate("checkOut", req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.Bookings.CreateBooking(r.Context(), u.ID, domain.BookingDraft{
		HotelID:    req.HotelID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	bookings, err := h.Bookings.ListBookings(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	b, err := h.Bookings.GetBooking(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handlers) rescheduleBooking(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	var req struct {
		CheckIn  string `json:"checkIn"`
		CheckOut string `json:"checkOut"`
		Guests   int    `json:"guests"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	checkIn, err := parseOptionalDate("checkIn", req.CheckIn)
	if err != nil {
		writeError(w, err)
		return
	}
	checkOut, err := parseOptionalDate("checkOut", req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.Bookings.RescheduleBooking(r.Context(), u.ID, chi.URLParam(r, "id"), domain.BookingChange{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFrom(r.Context())
	b, err := h.Bookings.CancelBooking(r.Context(), u.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}
