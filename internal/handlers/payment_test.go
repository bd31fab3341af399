package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRedirectRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &PaymentHandler{appScheme: "uaevisaapp"}
	r := gin.New()
	r.GET("/payment/success", h.PaymentSuccess)
	r.GET("/payment/failure", h.PaymentFailure)
	return r
}

func TestPaymentSuccessPage(t *testing.T) {
	r := newRedirectRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/success?paymentId=pay-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "Payment Successful")
	assert.Contains(t, body, "uaevisaapp://payment/success?paymentId=pay-1&status=paid")
}

func TestPaymentSuccessPageFallbackQueryNames(t *testing.T) {
	r := newRedirectRouter()

	// some provider redirects use id or reference_id instead of paymentId
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/success?reference_id=ref-9", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "paymentId=ref-9")
}

func TestPaymentFailurePage(t *testing.T) {
	r := newRedirectRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/failure?paymentId=pay-1&error=card+declined", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Payment Failed")
	assert.Contains(t, body, "uaevisaapp://payment/failure?paymentId=pay-1")
	assert.Contains(t, body, "card+declined")
}

func TestPaymentFailurePageDefaultMessage(t *testing.T) {
	r := newRedirectRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/failure", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment+was+not+completed")
}
