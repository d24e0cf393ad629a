package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/Pedroffda/alinhavo-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	clientID = "auth0|client"
	otherID  = "auth0|someone-else"
	tailorA  = "auth0|tailor-a"
	tailorB  = "auth0|tailor-b"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMarketplace installs a marketplace over a fresh database for one test
func setupMarketplace(t *testing.T) *services.Marketplace {
	t.Helper()

	previous := services.GetMarketplace()
	m := services.NewMarketplace(testutil.NewTestDB(t), services.DefaultPolicy())
	services.SetMarketplace(m)
	t.Cleanup(func() { services.SetMarketplace(previous) })
	return m
}

// routerAs returns the marketplace router authenticated as userID
func routerAs(userID, role string) *gin.Engine {
	router := setupTestRouter()
	api := router.Group("/api/v1")
	RegisterRoutes(api, testutil.MockAuthMiddleware(userID, role, "token-"+userID))
	return router
}

// doJSON sends body as JSON and decodes the envelope of the response
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return w.Code, response
}

func performGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "expected object data, got %v", response)
	return data
}

func listOf(t *testing.T, response map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := response["data"].([]interface{})
	require.True(t, ok, "expected list data, got %v", response)
	return data
}

func errorCode(response map[string]interface{}) string {
	errBody, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func orderBody(garment string) map[string]interface{} {
	return map[string]interface{}{
		"garment_type":  garment,
		"size":          "M",
		"color":         "navy",
		"material":      "linen",
		"style":         "slim",
		"details":       "two buttons",
		"delivery_days": 30,
		"max_budget":    "1500.00",
	}
}

// openOrder creates an order as clientID and returns its id
func openOrder(t *testing.T, garment string) uint {
	t.Helper()
	status, response := doJSON(t, routerAs(clientID, "client"), http.MethodPost, "/api/v1/orders", orderBody(garment))
	require.Equal(t, http.StatusCreated, status, "response: %v", response)
	return uint(dataOf(t, response)["id"].(float64))
}

// bid submits a proposal on orderID as tailorID and returns its id
func bid(t *testing.T, orderID uint, tailorID, price string) uint {
	t.Helper()
	status, response := doJSON(t, routerAs(tailorID, "tailor"), http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%d/proposals", orderID),
		map[string]interface{}{"price": price, "turnaround_hours": 72, "description": "hand finished"})
	require.Equal(t, http.StatusCreated, status, "response: %v", response)
	return uint(dataOf(t, response)["id"].(float64))
}

// accepted opens an order, bids on it as tailorA and accepts the bid
func accepted(t *testing.T) (orderID, proposalID uint) {
	t.Helper()
	orderID = openOrder(t, "suit")
	proposalID = bid(t, orderID, tailorA, "900")
	status, response := doJSON(t, routerAs(clientID, "client"), http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%d/proposals/%d/accept", orderID, proposalID), nil)
	require.Equal(t, http.StatusOK, status, "response: %v", response)
	return orderID, proposalID
}
