package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/domain"
)

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newRouter(svc *Service, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	RegisterRoutes(api, NewHandler(svc))
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUpdateStatusHandler_RejectsUnsettableStatus(t *testing.T) {
	svc, _, w, _ := setupService(t)
	o, err := svc.Create(context.Background(), w.ConsumerStaff.ID, w.Linking.ID, []LineRequest{{ProductID: w.Bolt.ID, Quantity: 1}})
	require.NoError(t, err)

	r := newRouter(svc, w.SupplierStaff.ID)
	path := fmt.Sprintf("/api/v1/orders/%d/status", o.ID)

	for _, status := range []string{"rejected", "lost"} {
		rr := doJSON(r, http.MethodPatch, path, gin.H{"status": status})
		require.Equal(t, http.StatusBadRequest, rr.Code, status)

		var body errorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, map[string]string{"status": "oneof"}, body.Error.Details)
	}

	rr := doJSON(r, http.MethodPatch, path, gin.H{"status": "processing"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"status":"processing"`)
}

func TestCreateHandler_TooManyLines(t *testing.T) {
	svc, db, w, _ := setupService(t)
	r := newRouter(svc, w.ConsumerStaff.ID)

	lines := make([]LineRequest, 101)
	for i := range lines {
		lines[i] = LineRequest{ProductID: int64(i + 1), Quantity: 1}
	}
	rr := doJSON(r, http.MethodPost, "/api/v1/orders", gin.H{"linking_id": w.Linking.ID, "products": lines})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"products": "max"}, body.Error.Details)

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}
