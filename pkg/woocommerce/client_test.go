package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dushixiang/propdesk/pkg/restclient"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderJSON(id int) map[string]any {
	return map[string]any{
		"id":               id,
		"number":           strconv.Itoa(1000 + id),
		"status":           "completed",
		"total":            "99.50",
		"currency":         "USD",
		"date_created_gmt": fmt.Sprintf("2024-05-%02dT08:30:00", id),
		"billing":          map[string]string{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"},
		"line_items": []map[string]any{
			{"product_id": 42, "name": "Starter 10K", "quantity": 1, "total": "99.50"},
		},
	}
}

func TestListOrders_Paginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ordersPath, r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_1", user)
		assert.Equal(t, "cs_1", pass)
		assert.Equal(t, "processing,completed", r.URL.Query().Get("status"))
		assert.Equal(t, "2024-04-30T00:00:00", r.URL.Query().Get("after"))

		w.Header().Set(totalPagesField, "2")
		switch r.URL.Query().Get("page") {
		case "1":
			json.NewEncoder(w).Encode([]any{orderJSON(1), orderJSON(2)})
		case "2":
			json.NewEncoder(w).Encode([]any{orderJSON(3), orderJSON(4)})
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	client := New(server.URL, "ck_1", "cs_1", restclient.Options{Timeout: 2 * time.Second})
	client.perPage = 2

	orders, err := client.ListOrders(context.Background(), ListOrdersParams{
		Status: []string{"processing", "completed"},
		After:  time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, orders, 4)

	o := orders[0]
	assert.Equal(t, 1, o.ID)
	assert.Equal(t, "1001", o.Number)
	assert.True(t, decimal.RequireFromString("99.50").Equal(o.Total))
	assert.Equal(t, "Ada Lovelace", o.BillingName)
	assert.Equal(t, "ada@example.com", o.BillingEmail)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC), o.CreatedAt)
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, "Starter 10K", o.LineItems[0].Name)
}

func TestListOrders_StopsOnShortPage(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]any{orderJSON(1)})
	}))
	defer server.Close()

	orders, err := New(server.URL, "k", "s", restclient.Options{}).ListOrders(context.Background(), ListOrdersParams{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, calls)
}
