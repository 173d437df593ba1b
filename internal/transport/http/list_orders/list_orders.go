package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/transport/http/converters"
	"github.com/corray333/backend-labs/checkout/internal/transport/http/middleware/auth"
	"github.com/gorilla/schema"
)

type service interface {
	GetOrders(ctx context.Context, query *order.QueryOrdersModel) ([]order.Order, error)
}

type queryOrdersRequest struct {
	Limit  int `schema:"limit,omitempty"`
	Offset int `schema:"offset,omitempty"`
}

// ListOrders handles the orders listing request. The result is always
// scoped to the authenticated customer: callers never see other
// customers' orders.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"detail": "Authentication credentials were not provided.",
		})

		return
	}

	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	orders, err := service.GetOrders(r.Context(), &order.QueryOrdersModel{
		CustomerIds: []int64{customerID},
		Limit:       query.Limit,
		Offset:      query.Offset,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting orders", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(converters.OrdersToResponse(orders)); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
