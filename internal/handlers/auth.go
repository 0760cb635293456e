package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/walletledger/internal/handlers/render"
	"github.com/nkiryanov/walletledger/internal/logger"
)

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		TCKN     string `json:"tckn" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken string           `json:"accessToken"`
		TokenType   string           `json:"tokenType"`
		ExpiresAt   time.Time        `json:"expiresAt"`
		Customer    customerResponse `json:"customer"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		res, err := authService.Login(r.Context(), data.TCKN, data.Password)
		if err != nil {
			renderError(w, err, l)
			return
		}

		w.Header().Set("Authorization", "Bearer "+res.Token.Value)
		render.Success(w, http.StatusOK, "Logged in successfully", response{
			AccessToken: res.Token.Value,
			TokenType:   "Bearer",
			ExpiresAt:   res.Token.ExpiresAt,
			Customer:    newCustomerResponse(res.Customer),
		})
	})
}
