package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
)

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Requested int32  `json:"requested,omitempty"`
	Available int32  `json:"available,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorMessage(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}

// writeError переводит доменные ошибки в HTTP-статусы. Нехватка стока —
// 409 с деталями requested/available, чтобы фронт мог показать остаток.
func writeError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: errorBody{
			Kind:      "insufficient_stock",
			Message:   insufficient.Error(),
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		}})
		return
	}

	switch {
	case domain.IsValidation(err):
		writeErrorMessage(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNumberConflict):
		writeErrorMessage(w, http.StatusServiceUnavailable, "conflict", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeErrorMessage(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		writeErrorMessage(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
