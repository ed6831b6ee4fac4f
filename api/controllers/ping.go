package controllers

import (
	"net/http"

	"github.com/abastecio/abastecio-backend/api/middleware"
	"github.com/abastecio/abastecio-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if operator := middleware.OperatorIDFromContext(r.Context()); operator != "" {
			payload["operator_id"] = operator
		}
		responses.WriteSuccess(w, payload)
	}
}
