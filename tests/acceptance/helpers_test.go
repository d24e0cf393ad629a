package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Pedroffda/alinhavo-api/config"
	"github.com/Pedroffda/alinhavo-api/controllers"
	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/Pedroffda/alinhavo-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "acceptance-secret"

// startServer loads configuration from the environment and serves the full
// marketplace API over a fresh database with HS256 bearer tokens.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Set test environment
	testutil.MustSetTestEnvironment(t)
	t.Setenv("DATABASE_URL", "sqlite://file::memory:")
	t.Setenv("AUTH0_DOMAIN", "")
	t.Setenv("JWT_SECRET", jwtSecret)
	t.Setenv("PORT", "8080")

	previousConfig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(previousConfig) })
	cfg, err := config.Load()
	require.NoError(t, err)

	previous := services.GetMarketplace()
	services.SetMarketplace(services.NewMarketplace(testutil.NewTestDB(t), services.DefaultPolicy()))
	t.Cleanup(func() { services.SetMarketplace(previous) })

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint (public)
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Alinhavo API is running",
			})
		})

		controllers.RegisterRoutes(v1, middleware.EnsureValidToken(cfg))
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// bearer signs a one hour token for subject
func bearer(t *testing.T, subject, role string) string {
	t.Helper()
	token, err := middleware.GenerateToken(jwtSecret, subject, role, "", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// makeRequest sends body as JSON with the given Authorization header
func makeRequest(t *testing.T, server *httptest.Server, method, path, authHeader string, body interface{}) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, server.URL+path, payload)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decode reads the JSON envelope and closes the body
func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return response
}

func data(response map[string]interface{}) map[string]interface{} {
	d, _ := response["data"].(map[string]interface{})
	return d
}

func errorCode(response map[string]interface{}) string {
	errObj, _ := response["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}
