package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"AE-VISA/internal/config"
	"AE-VISA/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPaymentService(db *gorm.DB, nomod NomodClient) *PaymentService {
	cfg := config.ServerConfig{BaseURL: "https://api.example.com", AppScheme: "uaevisaapp"}
	return NewPaymentService(db, nomod, cfg, testLogger())
}

func paymentInput() CreatePaymentInput {
	return CreatePaymentInput{
		Title:    "Tourist Visa",
		Currency: "AED",
		Items: []models.PaymentItem{
			{Name: "Tourist Visa", Amount: "150.00", Quantity: 1},
		},
	}
}

func TestCreatePaymentLink(t *testing.T) {
	db := newTestDB(t)
	nomod := &fakeNomod{}
	svc := newPaymentService(db, nomod)

	payment, err := svc.CreatePaymentLink(context.Background(), paymentInput())
	require.NoError(t, err)

	// the local row is created before the provider call so the redirect URLs
	// carry its id
	assert.Equal(t, fmt.Sprintf("https://api.example.com/payment/success?paymentId=%s", payment.ID), nomod.lastReq.SuccessURL)
	assert.Equal(t, fmt.Sprintf("https://api.example.com/payment/failure?paymentId=%s", payment.ID), nomod.lastReq.FailureURL)

	assert.Equal(t, "nomod-123", payment.NomodID)
	assert.Equal(t, "https://pay.nomod.com/l/nomod-123", payment.URL)
	assert.Equal(t, "150.00", payment.Amount)
	assert.Equal(t, models.PaymentStatusEnabled, payment.Status)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusEnabled, stored.Status)
	assert.NotEmpty(t, stored.RequestPayload)
}

func TestCreatePaymentLinkLinksSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakeNomod{})
	user := createTestUser(t, db, "payer@example.com")
	_, category := createTestCatalog(t, db)
	submission := seedSubmission(t, db, user.ID, category.ID, models.StatusPaymentPending)

	input := paymentInput()
	input.SubmittedFormID = submission.ID

	payment, err := svc.CreatePaymentLink(context.Background(), input)
	require.NoError(t, err)

	var linked models.FormSubmission
	require.NoError(t, db.First(&linked, "id = ?", submission.ID).Error)
	assert.Equal(t, payment.ID, linked.PaymentID)
}

func TestCreatePaymentLinkUnknownSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakeNomod{})

	input := paymentInput()
	input.SubmittedFormID = "missing"

	_, err := svc.CreatePaymentLink(context.Background(), input)
	require.EqualError(t, err, "submission not found")
}

func TestCreatePaymentLinkProviderFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakeNomod{createErr: errors.New("gateway timeout")})

	_, err := svc.CreatePaymentLink(context.Background(), paymentInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create payment link")

	// the orphaned row is marked failed rather than left pending
	var payments []models.Payment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusFailed, payments[0].Status)
}

func TestCreatePaymentLinkValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakeNomod{})
	ctx := context.Background()

	input := paymentInput()
	input.Title = ""
	_, err := svc.CreatePaymentLink(ctx, input)
	require.EqualError(t, err, "title is required")
	assert.True(t, IsValidation(err))

	input = paymentInput()
	input.Currency = ""
	_, err = svc.CreatePaymentLink(ctx, input)
	require.EqualError(t, err, "currency is required")

	input = paymentInput()
	input.Items = nil
	_, err = svc.CreatePaymentLink(ctx, input)
	require.EqualError(t, err, "at least one item is required")

	input = paymentInput()
	input.Items[0].Amount = "-5"
	_, err = svc.CreatePaymentLink(ctx, input)
	require.EqualError(t, err, "item 0 must have a positive amount")

	input = paymentInput()
	input.Items[0].Amount = "abc"
	_, err = svc.CreatePaymentLink(ctx, input)
	require.EqualError(t, err, "item 0 must have a positive amount")

	input = paymentInput()
	input.Items[0].Quantity = 0
	_, err = svc.CreatePaymentLink(ctx, input)
	require.EqualError(t, err, "item 0 must have a positive quantity")

	// no rows were created for rejected inputs
	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPaymentStatusRefreshesFromProvider(t *testing.T) {
	db := newTestDB(t)
	nomod := &fakeNomod{statusUps: map[string]string{"nomod-123": models.PaymentStatusPaid}}
	svc := newPaymentService(db, nomod)

	payment, err := svc.CreatePaymentLink(context.Background(), paymentInput())
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusEnabled, payment.Status)

	refreshed, err := svc.PaymentStatus(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, refreshed.Status)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "id = ?", payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.Status)

	_, err = svc.PaymentStatus(context.Background(), "missing")
	require.EqualError(t, err, "payment not found")
}

func TestPaymentStatusSkipsLocalOnlyRows(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakeNomod{})

	payment := &models.Payment{Title: "Local", Currency: "AED", Status: models.PaymentStatusFailed}
	require.NoError(t, db.Create(payment).Error)

	loaded, err := svc.PaymentStatus(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, loaded.Status)
}

func TestExpireStalePayments(t *testing.T) {
	db := newTestDB(t)
	svc := newPaymentService(db, &fakeNomod{})

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	future := time.Now().Add(time.Hour).Format(time.RFC3339)

	stale := &models.Payment{Title: "Stale", Currency: "AED", Status: models.PaymentStatusEnabled, ExpiryDate: past}
	require.NoError(t, db.Create(stale).Error)
	fresh := &models.Payment{Title: "Fresh", Currency: "AED", Status: models.PaymentStatusEnabled, ExpiryDate: future}
	require.NoError(t, db.Create(fresh).Error)
	paid := &models.Payment{Title: "Paid", Currency: "AED", Status: models.PaymentStatusPaid, ExpiryDate: past}
	require.NoError(t, db.Create(paid).Error)
	garbled := &models.Payment{Title: "Garbled", Currency: "AED", Status: models.PaymentStatusEnabled, ExpiryDate: "not-a-date"}
	require.NoError(t, db.Create(garbled).Error)

	count, err := svc.ExpireStalePayments()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// gorm folds a non-zero primary key on the destination into the query, so
	// each reload gets a zero-value struct
	reload := func(id string) models.Payment {
		var p models.Payment
		require.NoError(t, db.First(&p, "id = ?", id).Error)
		return p
	}

	assert.Equal(t, models.PaymentStatusExpired, reload(stale.ID).Status)
	assert.Equal(t, models.PaymentStatusEnabled, reload(fresh.ID).Status)
	assert.Equal(t, models.PaymentStatusPaid, reload(paid.ID).Status)
	assert.Equal(t, models.PaymentStatusEnabled, reload(garbled.ID).Status)
}
