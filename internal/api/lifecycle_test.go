package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/3FinityAI/fogandleaf-sub000/internal/api"
	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/health"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/ordernum"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/placement"
	"github.com/3FinityAI/fogandleaf-sub000/internal/service/stock"
	"github.com/3FinityAI/fogandleaf-sub000/internal/storage/memory"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger.WithField("test", "lifecycle")
}

func newTestAPI(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.PutCustomer(domain.Customer{
		ID:    "customer-1",
		Name:  "Asha Rao",
		Email: "asha@example.com",
	})
	store.PutProduct(domain.Product{
		ID:            "darjeeling",
		Name:          "Darjeeling First Flush",
		Category:      "black",
		PriceMinor:    84900,
		StockQuantity: 6,
	})

	logger := loggerForTests()
	ledger := stock.NewLedgerWithoutMetrics(logger)
	svc := placement.NewService(
		store,
		ordernum.NewGenerator(ordernum.DefaultPrefix),
		ledger,
		nil,
		nil,
		logger,
		placement.WithoutMetrics(),
	)
	t.Cleanup(svc.Close)

	handlers := api.NewHandlers(svc, stock.NewAdjuster(store, ledger, logger), store, store, logger)
	server := httptest.NewServer(api.NewRouter(handlers, health.NewChecker("test"), logger))
	t.Cleanup(server.Close)

	return server, store
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// Полный жизненный цикл через HTTP: размещение, чтение заказа, докуп
// остатка администратором и проверка журнала движений.
func TestOrderLifecycleOverHTTP(t *testing.T) {
	server, store := newTestAPI(t)

	placeBody := map[string]any{
		"customer_id": "customer-1",
		"lines": []map[string]any{
			{"product_id": "darjeeling", "qty": 4},
		},
		"address": map[string]any{
			"name": "Asha Rao", "line1": "14 MG Road", "city": "Bengaluru",
			"state": "Karnataka", "postal_code": "560001", "country": "IN",
		},
		"contact_email":  "asha@example.com",
		"payment_method": "upi",
		"shipping_minor": 5000,
	}

	var placed struct {
		OrderID     string `json:"order_id"`
		OrderNumber string `json:"order_number"`
		Status      string `json:"status"`
		TotalMinor  int64  `json:"total_minor"`
	}
	code := doJSON(t, http.MethodPost, server.URL+"/orders", placeBody, &placed)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "confirmed", placed.Status)
	require.Equal(t, int64(4*84900+5000), placed.TotalMinor)

	// Повторная попытка сверх остатка отклоняется с деталями дефицита.
	var conflict struct {
		Error struct {
			Kind      string `json:"kind"`
			Requested int32  `json:"requested"`
			Available int32  `json:"available"`
		} `json:"error"`
	}
	code = doJSON(t, http.MethodPost, server.URL+"/orders", placeBody, &conflict)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "insufficient_stock", conflict.Error.Kind)
	require.Equal(t, int32(4), conflict.Error.Requested)
	require.Equal(t, int32(2), conflict.Error.Available)

	// Администратор докупает сток, после чего тот же заказ проходит.
	var adjusted struct {
		PreviousStock int32 `json:"previous_stock"`
		NewStock      int32 `json:"new_stock"`
	}
	code = doJSON(t, http.MethodPost, server.URL+"/inventory/adjustments", map[string]any{
		"product_id": "darjeeling", "op": "add", "quantity": 10, "reason": "emergency restock",
	}, &adjusted)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, int32(2), adjusted.PreviousStock)
	require.Equal(t, int32(12), adjusted.NewStock)

	code = doJSON(t, http.MethodPost, server.URL+"/orders", placeBody, &placed)
	require.Equal(t, http.StatusCreated, code)

	// Журнал движений: продажа, докуп, продажа — новые первыми.
	var movements []struct {
		Type     string `json:"type"`
		QtyDelta int32  `json:"qty_delta"`
	}
	code = doJSON(t, http.MethodGet, fmt.Sprintf("%s/products/%s/movements", server.URL, "darjeeling"), nil, &movements)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, movements, 3)
	require.Equal(t, "sale", movements[0].Type)
	require.Equal(t, "restock", movements[1].Type)
	require.Equal(t, "sale", movements[2].Type)

	product, err := store.GetProduct("darjeeling")
	require.NoError(t, err)
	require.Equal(t, int32(8), product.StockQuantity)
}
