package web

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ecinar/route-tracker/internal/auth"
	"github.com/ecinar/route-tracker/internal/customer"
	"github.com/ecinar/route-tracker/internal/geo"
	"github.com/ecinar/route-tracker/internal/location"
	"github.com/ecinar/route-tracker/internal/visit"
)

type orderLineRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

func toOrderLines(reqs []orderLineRequest) []visit.OrderLine {
	if reqs == nil {
		return nil
	}
	lines := make([]visit.OrderLine, len(reqs))
	for i, r := range reqs {
		lines[i] = visit.OrderLine{
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
		}
	}
	return lines
}

type locationPayload struct {
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng       float64 `json:"lng" validate:"gte=-180,lte=180"`
	AccuracyM float64 `json:"accuracy_m"`
}

func (p *locationPayload) toSample() *location.Sample {
	if p == nil {
		return nil
	}
	return &location.Sample{
		Coordinate:     geo.Coordinate{Lat: p.Lat, Lng: p.Lng},
		AccuracyMeters: p.AccuracyM,
		CapturedAt:     time.Now(),
	}
}

type planVisitRequest struct {
	CustomerID  string             `json:"customer_id" validate:"required"`
	PlannedDate time.Time          `json:"planned_date" validate:"required"`
	Notes       string             `json:"notes"`
	Orders      []orderLineRequest `json:"orders" validate:"omitempty,dive"`
}

func (s *Server) handlePlanVisit(w http.ResponseWriter, r *http.Request) {
	var req planVisitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ownerID := auth.UserID(r.Context())

	// The target and the snapshot both come from the customer record.
	c, err := s.customers.GetByID(r.Context(), ownerID, req.CustomerID)
	if errors.Is(err, customer.ErrNotFound) {
		apiError(w, http.StatusNotFound, "not_found", "customer not found")
		return
	}
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal", "could not load customer")
		return
	}

	v, err := s.visits.Plan(r.Context(), visit.PlanParams{
		OwnerID: ownerID,
		Customer: visit.CustomerRef{
			ID:      c.ID,
			Name:    c.Name,
			Address: c.Address,
			Phone:   c.Phone,
		},
		Target:      c.Location,
		PlannedDate: req.PlannedDate,
		Notes:       req.Notes,
		Orders:      toOrderLines(req.Orders),
	})
	if err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusCreated, v)
}

func (s *Server) handleListVisits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts visit.ListOptions
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apiError(w, http.StatusBadRequest, "bad_request", "from must be RFC 3339")
			return
		}
		opts.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apiError(w, http.StatusBadRequest, "bad_request", "to must be RFC 3339")
			return
		}
		opts.To = &t
	}
	if raw := q.Get("status"); raw != "" {
		status := visit.Status(raw)
		if !status.IsValid() {
			apiError(w, http.StatusBadRequest, "bad_request", "unknown status "+raw)
			return
		}
		opts.Status = status
	}

	visits, err := s.visits.List(r.Context(), auth.UserID(r.Context()), opts)
	if err != nil {
		visitError(w, err)
		return
	}
	if visits == nil {
		visits = []*visit.Visit{}
	}
	apiJSON(w, http.StatusOK, visits)
}

func (s *Server) handleTodayVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := s.visits.Today(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		visitError(w, err)
		return
	}
	if visits == nil {
		visits = []*visit.Visit{}
	}
	apiJSON(w, http.StatusOK, visits)
}

func (s *Server) handleGetVisit(w http.ResponseWriter, r *http.Request) {
	v, err := s.visits.Get(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusOK, v)
}

type updateVisitRequest struct {
	PlannedDate time.Time `json:"planned_date"`
	Notes       string    `json:"notes"`
}

func (s *Server) handleUpdateVisit(w http.ResponseWriter, r *http.Request) {
	var req updateVisitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	v, err := s.visits.Update(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"], visit.UpdateParams{
		PlannedDate: req.PlannedDate,
		Notes:       req.Notes,
	})
	if err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVisit(w http.ResponseWriter, r *http.Request) {
	if err := s.visits.Delete(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusNoContent, nil)
}

type startVisitRequest struct {
	Location *locationPayload `json:"location" validate:"omitempty"`
}

func (s *Server) handleStartVisit(w http.ResponseWriter, r *http.Request) {
	var req startVisitRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	v, err := s.visits.Start(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"], req.Location.toSample())
	if err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusOK, v)
}

type completeVisitRequest struct {
	Location  *locationPayload   `json:"location" validate:"omitempty"`
	Orders    []orderLineRequest `json:"orders" validate:"omitempty,dive"`
	Notes     *string            `json:"notes"`
	Signature string             `json:"signature"`
}

func (s *Server) handleCompleteVisit(w http.ResponseWriter, r *http.Request) {
	var req completeVisitRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	v, err := s.visits.Complete(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"], visit.CompleteParams{
		Sample:    req.Location.toSample(),
		Orders:    toOrderLines(req.Orders),
		Notes:     req.Notes,
		Signature: req.Signature,
	})
	if err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusOK, v)
}

type cancelVisitRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelVisit(w http.ResponseWriter, r *http.Request) {
	var req cancelVisitRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	v, err := s.visits.Cancel(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		visitError(w, err)
		return
	}
	apiJSON(w, http.StatusOK, v)
}

// visitError maps state machine failures onto HTTP responses.
func visitError(w http.ResponseWriter, err error) {
	var (
		tooFar     *visit.TooFarError
		transition *visit.InvalidTransitionError
		badLine    *visit.InvalidOrderLineError
	)
	switch {
	case errors.Is(err, visit.ErrNotFound):
		apiError(w, http.StatusNotFound, "not_found", "visit not found")
	case errors.Is(err, visit.ErrForbidden):
		apiError(w, http.StatusForbidden, "forbidden", "visit belongs to another salesperson")
	case errors.As(err, &transition):
		apiError(w, http.StatusConflict, "invalid_transition", transition.Error())
	case errors.Is(err, visit.ErrConflict):
		apiError(w, http.StatusConflict, "conflict", "visit was modified concurrently, reload and retry")
	case errors.As(err, &tooFar):
		apiErrorDetails(w, http.StatusBadRequest, "too_far", tooFar.Error(), map[string]float64{
			"distance_m":  math.Round(tooFar.DistanceMeters),
			"threshold_m": tooFar.ThresholdMeters,
		})
	case errors.Is(err, visit.ErrLocationUnavailable):
		apiError(w, http.StatusBadRequest, "location_unavailable", "current location is not available")
	case errors.Is(err, visit.ErrLocationTimeout):
		apiError(w, http.StatusBadRequest, "location_timeout", "timed out acquiring location")
	case errors.As(err, &badLine):
		apiError(w, http.StatusBadRequest, "invalid_order", badLine.Error())
	case errors.Is(err, visit.ErrInvalidTarget):
		apiError(w, http.StatusUnprocessableEntity, "invalid_target", "visit target coordinates are out of range")
	case errors.Is(err, visit.ErrStoreTimeout):
		apiError(w, http.StatusServiceUnavailable, "store_timeout", "storage is not responding, try again")
	default:
		apiError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
