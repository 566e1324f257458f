package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles requests to the order intake API
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("ORDER_INTAKE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		// Order processing waits on the model, so allow more than a plain request.
		httpClient: &http.Client{
			Timeout: time.Second * 60,
		},
		BaseURL: baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}

	return true, nil
}

// Message is one turn of the conversation sent with each order
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OrderRequest is the body of POST /api/v1/orders
type OrderRequest struct {
	Message         string    `json:"message"`
	CustomerName    string    `json:"customer_name,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	History         []Message `json:"history,omitempty"`
}

// LineItem is a priced entry of an order result
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity_kg"`
	Price    float64 `json:"price"`
}

// OrderResult is the API's answer for one processed message
type OrderResult struct {
	OrderID               string     `json:"order_id"`
	Status                string     `json:"status"`
	OrderType             string     `json:"order_type"`
	TotalPrice            *float64   `json:"total_price"`
	Notes                 []string   `json:"notes"`
	Errors                []string   `json:"errors"`
	MissingIngredients    []string   `json:"missing_ingredients"`
	Items                 []LineItem `json:"items"`
	Messages              []Message  `json:"messages"`
	EstimatedPickupTime   *time.Time `json:"estimated_pickup_time"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`
}

// InventoryItem is a row of the ingredient store
type InventoryItem struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

// PlaceOrder sends one customer message to the API
func (c *ApiClient) PlaceOrder(order *OrderRequest) (*OrderResult, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/v1/orders", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to place order: %s", string(body))
	}

	var result OrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetInventory retrieves the ingredient inventory
func (c *ApiClient) GetInventory() ([]InventoryItem, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/inventory")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get inventory with status code: %d", resp.StatusCode)
	}

	var items []InventoryItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	return items, nil
}

// GetStats retrieves the order counters
func (c *ApiClient) GetStats() (map[string]interface{}, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/api/v1/stats")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get stats with status code: %d", resp.StatusCode)
	}

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}

	return stats, nil
}
