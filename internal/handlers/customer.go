package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/logger"
	"github.com/nkiryanov/walletledger/internal/service/customer"
)

func handleCreateCustomer(customerService customerService, l logger.Logger) http.Handler {
	type request struct {
		Name       string `json:"name" validate:"required,max=100"`
		Surname    string `json:"surname" validate:"required,max=100"`
		TCKN       string `json:"tckn" validate:"required,tckn"`
		Password   string `json:"password" validate:"required,min=8"`
		IsEmployee bool   `json:"isEmployee"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}
		if !identity.IsEmployee {
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		c, err := customerService.CreateCustomer(r.Context(), customer.CreateParams{
			Name:       data.Name,
			Surname:    data.Surname,
			TCKN:       data.TCKN,
			Password:   data.Password,
			IsEmployee: data.IsEmployee,
		})
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.Success(w, http.StatusCreated, "Customer created", newCustomerResponse(c))
	})
}

func handleListCustomers(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}
		if !identity.IsEmployee {
			render.ServiceError(w, "Forbidden", http.StatusForbidden)
			return
		}

		customers, err := customerService.ListCustomers(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, mapSlice(customers, newCustomerResponse))
	})
}

func handleGetCustomer(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid customer id", http.StatusBadRequest)
			return
		}
		if !allowed(w, identity, id) {
			return
		}

		renderCustomer(w, r, customerService, id, l)
	})
}

func handleCustomerMe(customerService customerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r, l)
		if !ok {
			return
		}

		renderCustomer(w, r, customerService, identity.CustomerID, l)
	})
}

func renderCustomer(w http.ResponseWriter, r *http.Request, customerService customerService, id uuid.UUID, l logger.Logger) {
	c, err := customerService.GetCustomer(r.Context(), id)
	if err != nil {
		renderError(w, err, l)
		return
	}

	hasWallets, err := customerService.HasWallets(r.Context(), id)
	if err != nil {
		renderError(w, err, l)
		return
	}

	resp := newCustomerResponse(c)
	resp.HasWallets = &hasWallets
	render.JSON(w, resp)
}
