package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pedroffda/alinhavo-api/config"
	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/Pedroffda/alinhavo-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "acceptance-test-secret"

// apiClient drives the full router with locally signed tokens
type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()

	router := testRouter(t)

	previous := services.GetMarketplace()
	services.SetMarketplace(services.NewMarketplace(testutil.NewTestDB(t), services.DefaultPolicy()))
	t.Cleanup(func() { services.SetMarketplace(previous) })

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}
}

func (a *apiClient) do(subject, role, method, path string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(a.t, err)
	}

	req, err := http.NewRequest(method, a.server.URL+path, bytes.NewReader(payload))
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if subject != "" {
		token, err := middleware.GenerateToken(testSecret, subject, role, "", time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var response map[string]interface{}
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&response))
	return resp.StatusCode, response
}

func data(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "unexpected response: %v", response)
	return d
}

func id(t *testing.T, response map[string]interface{}) int {
	t.Helper()
	return int(data(t, response)["id"].(float64))
}

// TestServerStartup verifies the full router can be built
func TestServerStartup(t *testing.T) {
	router := testRouter(t)
	assert.NotNil(t, router, "Router should be initialized")
}

// TestMarketplaceLifecycleAcceptance walks an order from creation to completion
// through the real token middleware.
func TestMarketplaceLifecycleAcceptance(t *testing.T) {
	api := newAPIClient(t)
	const (
		client = "auth0|client"
		tailor = "auth0|tailor"
		rival  = "auth0|rival"
	)

	// Client opens an order
	status, response := api.do(client, "client", "POST", "/api/v1/orders", map[string]interface{}{
		"garment_type":  "wedding dress",
		"size":          "38",
		"color":         "ivory",
		"material":      "silk",
		"style":         "mermaid",
		"delivery_days": 60,
		"max_budget":    "4200",
	})
	require.Equal(t, http.StatusCreated, status, "response: %v", response)
	orderID := id(t, response)

	// Tailors find it and bid
	status, response = api.do(tailor, "tailor", "GET", "/api/v1/orders/open?sort=deadline", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, response["data"], 1)

	proposalsPath := fmt.Sprintf("/api/v1/orders/%d/proposals", orderID)
	status, response = api.do(tailor, "tailor", "POST", proposalsPath, map[string]interface{}{
		"price": "3900", "turnaround_hours": 720, "description": "French lace",
	})
	require.Equal(t, http.StatusCreated, status, "response: %v", response)
	proposalID := id(t, response)

	status, response = api.do(rival, "tailor", "POST", proposalsPath, map[string]interface{}{
		"price": "3500", "turnaround_hours": 900,
	})
	require.Equal(t, http.StatusCreated, status, "response: %v", response)

	// Clients cannot use tailor-only routes
	status, response = api.do(client, "client", "POST", proposalsPath, map[string]interface{}{
		"price": "1", "turnaround_hours": 1,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INSUFFICIENT_ROLE", response["error"].(map[string]interface{})["code"])

	// Client reviews and accepts
	status, response = api.do(client, "client", "GET", proposalsPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, response["data"], 2)

	status, response = api.do(client, "client", "POST", fmt.Sprintf("%s/%d/accept", proposalsPath, proposalID), nil)
	require.Equal(t, http.StatusOK, status, "response: %v", response)
	order := data(t, response)["order"].(map[string]interface{})
	assert.Equal(t, "in_progress", order["status"])
	assert.Equal(t, tailor, order["assigned_tailor_id"])

	// The order leaves the open listing
	status, response = api.do(rival, "tailor", "GET", "/api/v1/orders/open", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, response["data"], 0)

	// Conversation between the parties
	messagesPath := fmt.Sprintf("/api/v1/proposals/%d/messages", proposalID)
	status, _ = api.do(client, "client", "POST", messagesPath, map[string]interface{}{"content": "Can we add sleeves?"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(tailor, "tailor", "POST", messagesPath, map[string]interface{}{"content": "Yes, long lace sleeves."})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.do(rival, "tailor", "POST", messagesPath, map[string]interface{}{"content": "Let me in"})
	assert.Equal(t, http.StatusForbidden, status)

	status, response = api.do(client, "client", "GET", messagesPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, response["data"], 2)

	// Progress until completion
	progressPath := fmt.Sprintf("/api/v1/proposals/%d/progress", proposalID)
	for _, p := range []int{25, 60, 100} {
		status, response = api.do(tailor, "tailor", "PUT", progressPath, map[string]interface{}{"progress": p})
		require.Equal(t, http.StatusOK, status, "response: %v", response)
	}

	status, response = api.do(client, "client", "GET", fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", data(t, response)["status"])
	assert.Equal(t, float64(100), data(t, response)["progress"])

	status, response = api.do(tailor, "tailor", "GET", "/api/v1/tailors/me/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(t, response)["completed"])
	assert.Equal(t, float64(0), data(t, response)["in_progress"])
}

func TestInvalidTokenAcceptance(t *testing.T) {
	api := newAPIClient(t)

	req, err := http.NewRequest("GET", api.server.URL+"/api/v1/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, "INVALID_TOKEN", response["error"].(map[string]interface{})["code"])
}

func TestDatabaseStatusAcceptance(t *testing.T) {
	db := testutil.NewTestDB(t)
	previous := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(previous) })

	router := testRouter(t)
	req, _ := http.NewRequest("GET", "/api/v1/database/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
