package custorder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/custorder-api/internal/handler"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService()
	return NewRouter(svc, handler.NewHealthHandler())
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHandler_CustomerLifecycle(t *testing.T) {
	r := newTestRouter()

	w, body := do(t, r, http.MethodPost, "/api/customers/add",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), body["id"])

	w, body = do(t, r, http.MethodPost, "/api/customers/add",
		`{"id":1,"firstName":"Ada","lastName":"King","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "King", body["lastName"])

	w, _ = do(t, r, http.MethodGet, "/api/customers", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lastName":"King"`)

	w, body = do(t, r, http.MethodDelete, "/api/customers/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted Customer with ID: 1", body["message"])

	w, body = do(t, r, http.MethodGet, "/api/customers/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer not found with id: 1", body["error"])
}

func TestHandler_SaveCustomer_Invalid(t *testing.T) {
	r := newTestRouter()

	w, _ := do(t, r, http.MethodPost, "/api/customers/add", `{"firstName":"Ada","lastName":"Lovelace","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/customers/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Orders(t *testing.T) {
	r := newTestRouter()
	w, _ := do(t, r, http.MethodPost, "/api/customers/add",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := do(t, r, http.MethodPost, "/api/orders/add", `{"customerId":1,"totalAmount":"999.99","status":"confirmed"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "CONFIRMED", body["status"])
	assert.Equal(t, "999.99", body["totalAmount"])
	orderID := body["id"]

	w, _ = do(t, r, http.MethodPost, "/api/orders/add", `{"customerId":1,"status":"LOST"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/orders/add", `{"totalAmount":"1.00"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/orders/add", `{"customerId":50}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = do(t, r, http.MethodGet, "/api/orders/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orderID, body["id"])

	w, body = do(t, r, http.MethodDelete, "/api/orders/999", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted", body["message"])

	w, _ = do(t, r, http.MethodGet, "/api/orders/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
