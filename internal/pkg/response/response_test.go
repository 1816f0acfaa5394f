package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func serve(t *testing.T, handler gin.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	r := gin.New()
	r.POST("/", handler)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestSuccessEnvelope(t *testing.T) {
	w, parsed := serve(t, func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"booking": gin.H{"id": 1}})
	}, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, parsed["success"])
	assert.NotNil(t, parsed["data"])
	assert.Nil(t, parsed["error"])
}

func TestErrorEnvelope(t *testing.T) {
	w, parsed := serve(t, func(c *gin.Context) {
		Error(c, http.StatusConflict, "CONFLICT", "Booking already reviewed")
	}, "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, parsed["success"])
	assert.Nil(t, parsed["data"])

	errBody := parsed["error"].(map[string]interface{})
	assert.Equal(t, "CONFLICT", errBody["code"])
	assert.Equal(t, "Booking already reviewed", errBody["message"])
	assert.Nil(t, errBody["details"])
}

func TestBindErrorReportsFieldDetails(t *testing.T) {
	type loginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	w, parsed := serve(t, func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		Success(c, http.StatusOK, nil)
	}, `{"email":"not-an-email"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := parsed["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION", errBody["code"])

	details := errBody["details"].(map[string]interface{})
	assert.Len(t, details, 2)
}

func TestBindErrorWithoutFieldDetail(t *testing.T) {
	w, parsed := serve(t, func(c *gin.Context) {
		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		Success(c, http.StatusOK, nil)
	}, `{"amount": not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errBody := parsed["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION", errBody["code"])
	assert.Equal(t, "Invalid request body", errBody["message"])
	assert.Nil(t, errBody["details"])
}
