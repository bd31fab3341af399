package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	userService    *services.UserService
	push           services.PushClient
	appScheme      string
}

func NewPaymentHandler(paymentService *services.PaymentService, userService *services.UserService, push services.PushClient, appScheme string) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		userService:    userService,
		push:           push,
		appScheme:      appScheme,
	}
}

// CreatePayment creates a payment link, optionally linked to a submission
// POST /create-payment
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var input services.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.CreatePaymentLink(c.Request.Context(), input)
	if err != nil {
		status := errStatus(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// PaymentStatus refreshes and returns a payment's status
// GET /payment-status/:id
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	payment, err := h.paymentService.PaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// SendFCM pushes a notification to a user's registered device token
// POST /send-fcm
func (h *PaymentHandler) SendFCM(c *gin.Context) {
	var input struct {
		UserID string `json:"user_id" binding:"required"`
		Title  string `json:"title" binding:"required"`
		Body   string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UserByID(input.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.FCMToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user does not have a registered device token"})
		return
	}

	if err := h.push.Send(user.FCMToken, input.Title, input.Body); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// redirectPage is the interstitial served to the provider's browser redirect.
// It tries to deep-link straight into the mobile app and falls back to a
// manual link.
var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: {{.Background}}; color: white; text-align: center; }
    .container { background: rgba(255,255,255,0.1); border-radius: 20px; padding: 40px; max-width: 400px; }
    .icon { font-size: 64px; margin-bottom: 20px; }
    .manual-link { display: none; margin-top: 20px; padding: 12px 24px; background: white; color: #333; text-decoration: none; border-radius: 8px; font-weight: 600; }
  </style>
</head>
<body>
  <div class="container">
    <div class="icon">{{.Icon}}</div>
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
    <p id="status">Opening UAE Visa App...</p>
    <a href="{{.DeepLink}}" class="manual-link" id="manual-link">Open App Manually</a>
  </div>
  <script>
    window.location.href = {{.DeepLink}};
    setTimeout(function() {
      document.getElementById('status').textContent = 'App not opening automatically?';
      document.getElementById('manual-link').style.display = 'inline-block';
    }, 2000);
  </script>
</body>
</html>`))

type redirectData struct {
	Title      string
	Message    string
	Icon       string
	Background string
	DeepLink   string
}

// PaymentSuccess is where the provider redirects after a completed payment
// GET /payment/success?paymentId=...&status=paid
func (h *PaymentHandler) PaymentSuccess(c *gin.Context) {
	paymentID := firstQuery(c, "paymentId", "id", "reference_id")
	status := c.DefaultQuery("status", "paid")

	deepLink := fmt.Sprintf("%s://payment/success?paymentId=%s&status=%s",
		h.appScheme, url.QueryEscape(paymentID), url.QueryEscape(status))

	h.renderRedirect(c, redirectData{
		Title:      "Payment Successful",
		Message:    "Your transaction has been completed.",
		Icon:       "\u2705",
		Background: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		DeepLink:   deepLink,
	})
}

// PaymentFailure is where the provider redirects after a failed payment
// GET /payment/failure?paymentId=...&error=...
func (h *PaymentHandler) PaymentFailure(c *gin.Context) {
	paymentID := firstQuery(c, "paymentId", "id", "reference_id")
	status := c.DefaultQuery("status", "failed")
	errorMessage := firstQuery(c, "error", "message")
	if errorMessage == "" {
		errorMessage = "Payment was not completed"
	}

	deepLink := fmt.Sprintf("%s://payment/failure?paymentId=%s&status=%s&error=%s",
		h.appScheme, url.QueryEscape(paymentID), url.QueryEscape(status), url.QueryEscape(errorMessage))

	h.renderRedirect(c, redirectData{
		Title:      "Payment Failed",
		Message:    "Your transaction could not be completed.",
		Icon:       "\u274C",
		Background: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
		DeepLink:   deepLink,
	})
}

func (h *PaymentHandler) renderRedirect(c *gin.Context, data redirectData) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := redirectPage.Execute(c.Writer, data); err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}
