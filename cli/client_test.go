package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPlaceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/orders" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Message != "one pizza" || len(req.History) != 2 {
			t.Errorf("unexpected request body %+v", req)
		}
		w.Write([]byte(`{"order_id":"abc","status":"completed","order_type":"pickup","total_price":11.25,
			"estimated_pickup_time":"2024-09-20T18:30:00Z","messages":[{"role":"assistant","content":"Coming up"}]}`))
	}))
	defer server.Close()

	client := &ApiClient{httpClient: server.Client(), BaseURL: server.URL}
	result, err := client.PlaceOrder(&OrderRequest{
		Message: "one pizza",
		History: []Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}
	if result.Status != "completed" || result.TotalPrice == nil || *result.TotalPrice != 11.25 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.EstimatedPickupTime == nil || result.EstimatedDeliveryTime != nil {
		t.Errorf("expected only a pickup estimate, got %+v", result)
	}
}

func TestPlaceOrderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"message is required"}`))
	}))
	defer server.Close()

	client := &ApiClient{httpClient: server.Client(), BaseURL: server.URL}
	_, err := client.PlaceOrder(&OrderRequest{})
	if err == nil || !strings.Contains(err.Error(), "message is required") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestGetInventory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"ingredient_id":"1","name":"Tomato","quantity":50,"unit":"kg"}]`))
	}))
	defer server.Close()

	client := &ApiClient{httpClient: server.Client(), BaseURL: server.URL}
	items, err := client.GetInventory()
	if err != nil {
		t.Fatalf("GetInventory() error = %v", err)
	}
	rows := inventoryRows(items)
	if len(rows) != 1 || rows[0][1] != "Tomato" || rows[0][2] != "50.00" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestResultView(t *testing.T) {
	price := 12.5
	view := resultView(&OrderResult{
		OrderID:            "0123456789",
		Status:             "ingredients_checked",
		TotalPrice:         &price,
		MissingIngredients: []string{"saffron"},
	})
	if !strings.Contains(view, "Order 01234567: ingredients_checked") {
		t.Errorf("missing header in %q", view)
	}
	if !strings.Contains(view, "saffron") {
		t.Errorf("missing ingredient not shown in %q", view)
	}
}
