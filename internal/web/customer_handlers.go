package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ecinar/route-tracker/internal/auth"
	"github.com/ecinar/route-tracker/internal/customer"
	"github.com/ecinar/route-tracker/internal/geo"
)

type customerRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"omitempty,email"`
	Phone     string  `json:"phone" validate:"required"`
	Address   string  `json:"address" validate:"required"`
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng       float64 `json:"lng" validate:"gte=-180,lte=180"`
	Company   string  `json:"company"`
	TaxNumber string  `json:"tax_number"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	Notes     string  `json:"notes"`
}

func (req *customerRequest) toModel(ownerID string) *customer.Customer {
	return &customer.Customer{
		OwnerID:   ownerID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Location:  geo.Coordinate{Lat: req.Lat, Lng: req.Lng},
		Company:   req.Company,
		TaxNumber: req.TaxNumber,
		Category:  customer.Category(req.Category),
		Status:    customer.Status(req.Status),
		Notes:     req.Notes,
	}
}

type pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type customerList struct {
	Data       []*customer.Customer `json:"data"`
	Pagination pagination           `json:"pagination"`
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := customer.ListOptions{
		Search:   q.Get("search"),
		Category: customer.Category(q.Get("category")),
		Status:   customer.Status(q.Get("status")),
	}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	customers, total, err := s.customers.List(r.Context(), auth.UserID(r.Context()), opts)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal", "could not list customers")
		return
	}
	if customers == nil {
		customers = []*customer.Customer{}
	}

	pages := (total + opts.Limit - 1) / opts.Limit
	apiJSON(w, http.StatusOK, customerList{
		Data:       customers,
		Pagination: pagination{Current: opts.Page, Pages: pages, Total: total},
	})
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.customers.Create(r.Context(), req.toModel(auth.UserID(r.Context())))
	if err != nil {
		apiError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	apiJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.customers.GetByID(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if errors.Is(err, customer.ErrNotFound) {
		apiError(w, http.StatusNotFound, "not_found", "customer not found")
		return
	}
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal", "could not load customer")
		return
	}
	apiJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := req.toModel(auth.UserID(r.Context()))
	c.ID = mux.Vars(r)["id"]

	updated, err := s.customers.Update(r.Context(), c)
	if errors.Is(err, customer.ErrNotFound) {
		apiError(w, http.StatusNotFound, "not_found", "customer not found")
		return
	}
	if err != nil {
		apiError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	apiJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	err := s.customers.Delete(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if errors.Is(err, customer.ErrNotFound) {
		apiError(w, http.StatusNotFound, "not_found", "customer not found")
		return
	}
	if err != nil {
		apiError(w, http.StatusInternalServerError, "internal", "could not delete customer")
		return
	}
	apiJSON(w, http.StatusNoContent, nil)
}
