package acceptance

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	clientSubject = "auth0|client"
	tailorSubject = "auth0|tailor"
	rivalSubject  = "auth0|rival"
)

// OrderAcceptanceTestSuite walks bids and orders through their lifecycles over HTTP
type OrderAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
}

// SetupTest starts a server over a fresh database
func (suite *OrderAcceptanceTestSuite) SetupTest() {
	suite.server = startServer(suite.T())
}

func (suite *OrderAcceptanceTestSuite) call(subject, role, method, path string, body interface{}) (int, map[string]interface{}) {
	resp := makeRequest(suite.T(), suite.server, method, path, bearer(suite.T(), subject, role), body)
	return resp.StatusCode, decode(suite.T(), resp)
}

func (suite *OrderAcceptanceTestSuite) openOrder(garment, budget string, deliveryDays int) int {
	status, response := suite.call(clientSubject, "client", "POST", "/api/v1/orders", map[string]interface{}{
		"garment_type":  garment,
		"size":          "M",
		"color":         "navy",
		"material":      "linen",
		"style":         "slim",
		"delivery_days": deliveryDays,
		"max_budget":    budget,
	})
	suite.Require().Equal(http.StatusCreated, status, "response: %v", response)
	return int(data(response)["id"].(float64))
}

func (suite *OrderAcceptanceTestSuite) bid(orderID int, tailor, price string) (int, map[string]interface{}) {
	return suite.call(tailor, "tailor", "POST", fmt.Sprintf("/api/v1/orders/%d/proposals", orderID), map[string]interface{}{
		"price":            price,
		"turnaround_hours": 120,
	})
}

// TestOrderValidation tests that malformed orders never reach the ledger
func (suite *OrderAcceptanceTestSuite) TestOrderValidation() {
	status, response := suite.call(clientSubject, "client", "POST", "/api/v1/orders", map[string]interface{}{
		"garment_type":  "",
		"delivery_days": 0,
		"max_budget":    "-10",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, status)
	assert.Equal(suite.T(), "VALIDATION_ERROR", errorCode(response))

	status, response = suite.call(clientSubject, "client", "GET", "/api/v1/orders", nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.Empty(suite.T(), response["data"])
}

// TestOpenOrdersListing tests filtering and ordering of the public board
func (suite *OrderAcceptanceTestSuite) TestOpenOrdersListing() {
	cheap := suite.openOrder("shirt", "200", 30)
	pricey := suite.openOrder("shirt", "900", 10)
	suite.openOrder("dress", "500", 20)

	status, response := suite.call(tailorSubject, "tailor", "GET", "/api/v1/orders/open?garment=shirt&sort=budget&dir=desc", nil)
	suite.Require().Equal(http.StatusOK, status, "response: %v", response)
	orders := response["data"].([]interface{})
	suite.Require().Len(orders, 2)
	assert.Equal(suite.T(), float64(pricey), orders[0].(map[string]interface{})["id"])
	assert.Equal(suite.T(), float64(cheap), orders[1].(map[string]interface{})["id"])

	status, response = suite.call(tailorSubject, "tailor", "GET", "/api/v1/orders/open?sort=deadline&limit=1", nil)
	suite.Require().Equal(http.StatusOK, status)
	orders = response["data"].([]interface{})
	suite.Require().Len(orders, 1)
	assert.Equal(suite.T(), float64(pricey), orders[0].(map[string]interface{})["id"])

	status, response = suite.call(tailorSubject, "tailor", "GET", "/api/v1/orders/open?sort=popularity", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, status)
	assert.Equal(suite.T(), "INVALID_SORT", errorCode(response))
}

// TestWithdrawAndResubmit tests one pending bid per tailor per order
func (suite *OrderAcceptanceTestSuite) TestWithdrawAndResubmit() {
	orderID := suite.openOrder("coat", "1200", 45)

	status, response := suite.bid(orderID, tailorSubject, "1100")
	suite.Require().Equal(http.StatusCreated, status, "response: %v", response)
	first := int(data(response)["id"].(float64))
	assert.Equal(suite.T(), "1100", data(response)["price"])

	status, response = suite.bid(orderID, tailorSubject, "1000")
	assert.Equal(suite.T(), http.StatusConflict, status)
	assert.Equal(suite.T(), "PROPOSAL_ALREADY_PENDING", errorCode(response))

	// Only the author may withdraw
	status, _ = suite.call(rivalSubject, "tailor", "POST", fmt.Sprintf("/api/v1/proposals/%d/withdraw", first), nil)
	assert.Equal(suite.T(), http.StatusForbidden, status)

	status, response = suite.call(tailorSubject, "tailor", "POST", fmt.Sprintf("/api/v1/proposals/%d/withdraw", first), nil)
	suite.Require().Equal(http.StatusOK, status, "response: %v", response)
	assert.Equal(suite.T(), "cancelled", data(response)["status"])

	status, response = suite.bid(orderID, tailorSubject, "1000")
	suite.Require().Equal(http.StatusCreated, status, "response: %v", response)

	status, response = suite.call(tailorSubject, "tailor", "GET", "/api/v1/proposals/mine", nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.Len(suite.T(), response["data"], 2)
}

// TestRejectAndCancel tests the client's ways of closing bids
func (suite *OrderAcceptanceTestSuite) TestRejectAndCancel() {
	orderID := suite.openOrder("skirt", "400", 15)

	status, response := suite.bid(orderID, tailorSubject, "380")
	suite.Require().Equal(http.StatusCreated, status)
	rejected := int(data(response)["id"].(float64))

	status, response = suite.bid(orderID, rivalSubject, "350")
	suite.Require().Equal(http.StatusCreated, status)
	pending := int(data(response)["id"].(float64))

	status, response = suite.call(clientSubject, "client", "POST", fmt.Sprintf("/api/v1/proposals/%d/reject", rejected), nil)
	suite.Require().Equal(http.StatusOK, status, "response: %v", response)
	assert.Equal(suite.T(), "rejected", data(response)["status"])

	// Cancelling the open order closes the remaining bid
	status, response = suite.call(clientSubject, "client", "POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), nil)
	suite.Require().Equal(http.StatusOK, status, "response: %v", response)
	assert.Equal(suite.T(), "cancelled", data(response)["status"])

	status, response = suite.call(rivalSubject, "tailor", "GET", fmt.Sprintf("/api/v1/proposals/%d", pending), nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.Equal(suite.T(), "rejected", data(response)["status"])

	status, response = suite.call(clientSubject, "client", "POST", fmt.Sprintf("/api/v1/orders/%d/proposals/%d/accept", orderID, pending), nil)
	assert.Equal(suite.T(), http.StatusConflict, status)
	assert.Equal(suite.T(), "ORDER_NOT_OPEN", errorCode(response))
}

// TestProgressRules tests progress bounds and monotonic updates
func (suite *OrderAcceptanceTestSuite) TestProgressRules() {
	orderID := suite.openOrder("suit", "2500", 40)
	status, response := suite.bid(orderID, tailorSubject, "2300")
	suite.Require().Equal(http.StatusCreated, status)
	proposalID := int(data(response)["id"].(float64))

	progressPath := fmt.Sprintf("/api/v1/proposals/%d/progress", proposalID)

	// No progress before acceptance
	status, response = suite.call(tailorSubject, "tailor", "PUT", progressPath, map[string]interface{}{"progress": 10})
	assert.Equal(suite.T(), http.StatusConflict, status)
	assert.Equal(suite.T(), "PROPOSAL_NOT_ACCEPTED", errorCode(response))

	status, _ = suite.call(clientSubject, "client", "POST", fmt.Sprintf("/api/v1/orders/%d/proposals/%d/accept", orderID, proposalID), nil)
	suite.Require().Equal(http.StatusOK, status)

	testCases := []struct {
		name       string
		subject    string
		progress   int
		wantStatus int
		wantCode   string
	}{
		{"Above range", tailorSubject, 101, http.StatusBadRequest, "INVALID_PROGRESS"},
		{"Below range", tailorSubject, -1, http.StatusBadRequest, "INVALID_PROGRESS"},
		{"Client cannot report", clientSubject, 40, http.StatusForbidden, "FORBIDDEN"},
		{"Tailor reports", tailorSubject, 40, http.StatusOK, ""},
		{"Going back", tailorSubject, 30, http.StatusBadRequest, "PROGRESS_DECREASE"},
	}

	for _, tc := range testCases {
		status, response := suite.call(tc.subject, "tailor", "PUT", progressPath, map[string]interface{}{"progress": tc.progress})
		assert.Equal(suite.T(), tc.wantStatus, status, "%s: %v", tc.name, response)
		if tc.wantCode != "" {
			assert.Equal(suite.T(), tc.wantCode, errorCode(response), tc.name)
		}
	}

	status, response = suite.call(clientSubject, "client", "GET", fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.Equal(suite.T(), float64(40), data(response)["progress"])
	assert.Equal(suite.T(), "in_progress", data(response)["status"])
}

// TestOrderAcceptanceTestSuite runs the acceptance test suite
func TestOrderAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderAcceptanceTestSuite))
}
