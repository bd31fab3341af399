package services

import (
	"testing"

	"AE-VISA/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesKeywordMatchesVisaTitle(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")

	visaServices, err := svc.CreateService(user.ID, CreateServiceInput{Title: "Visa Services", IsForSale: true})
	require.NoError(t, err)
	_, err = svc.CreateService(user.ID, CreateServiceInput{Title: "Attestation"})
	require.NoError(t, err)

	category, err := svc.CreateCategory(user.ID, CreateCategoryInput{
		Title: "Tourist", ServiceID: visaServices.ID, NormalPrice: 100,
	})
	require.NoError(t, err)
	_, err = svc.CreateVisa(user.ID, CreateVisaInput{
		Title: "Golden Residency", CategoryID: category.ID, NormalPrice: 500,
	})
	require.NoError(t, err)

	all, err := svc.Services("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// a keyword hitting only a visa title still surfaces the owning service
	matched, err := svc.Services("golden")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, visaServices.ID, matched[0].Service.ID)

	byCategory, err := svc.Services("tourist")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	none, err := svc.Services("schengen")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestServicesRollUpSubmissionCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	_, category := createTestCatalog(t, db)

	seedSubmission(t, db, user.ID, category.ID, models.StatusUnderProgress)
	seedSubmission(t, db, user.ID, category.ID, models.StatusCompleted)
	seedSubmission(t, db, user.ID, category.ID, models.StatusRejected)

	overviews, err := svc.Services("")
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, 3, overviews[0].Total)
	assert.Equal(t, 1, overviews[0].PendingSubmission)
	assert.Equal(t, 1, overviews[0].CompletedSubmission)
}

func TestCategoryByIDVisaFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	_, category := createTestCatalog(t, db)

	_, err := svc.CreateVisa(user.ID, CreateVisaInput{Title: "30 Day Single Entry", CategoryID: category.ID})
	require.NoError(t, err)
	_, err = svc.CreateVisa(user.ID, CreateVisaInput{Title: "90 Day Multi Entry", CategoryID: category.ID})
	require.NoError(t, err)

	full, err := svc.CategoryByID(category.ID, "")
	require.NoError(t, err)
	assert.Len(t, full.Visas, 2)

	narrowed, err := svc.CategoryByID(category.ID, "multi")
	require.NoError(t, err)
	require.Len(t, narrowed.Visas, 1)
	assert.Equal(t, "90 Day Multi Entry", narrowed.Visas[0].Title)

	_, err = svc.CategoryByID("missing", "")
	require.EqualError(t, err, "category not found")
}

func TestCreateCategoryRequiresService(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")

	_, err := svc.CreateCategory(user.ID, CreateCategoryInput{Title: "Orphan", ServiceID: "missing"})
	require.EqualError(t, err, "service not found")
}

func TestUpdateCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	_, category := createTestCatalog(t, db)

	title := "Business"
	price := 250.0
	updated, err := svc.UpdateCategory(user.ID, category.ID, UpdateCategoryInput{
		Title:       &title,
		NormalPrice: &price,
		Description: []string{"Processing within 5 working days"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Business", updated.Title)
	assert.Equal(t, 250.0, updated.NormalPrice)
	assert.Equal(t, models.StringList{"Processing within 5 working days"}, updated.Description)
	assert.Equal(t, user.ID, updated.UpdatedBy)
}

func TestVisasTitleFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	_, category := createTestCatalog(t, db)

	_, err := svc.CreateVisa(user.ID, CreateVisaInput{Title: "Golden Residency", CategoryID: category.ID})
	require.NoError(t, err)
	_, err = svc.CreateVisa(user.ID, CreateVisaInput{Title: "Tourist Entry", CategoryID: category.ID})
	require.NoError(t, err)

	visas, err := svc.Visas("GOLDEN")
	require.NoError(t, err)
	require.Len(t, visas, 1)
	assert.Equal(t, "Golden Residency", visas[0].Title)

	all, err := svc.Visas("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVisaByIDOrdersFormAttributes(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	_, category := createTestCatalog(t, db)

	visa, err := svc.CreateVisa(user.ID, CreateVisaInput{Title: "Golden Residency", CategoryID: category.ID})
	require.NoError(t, err)

	forms := NewFormService(db, testLogger())
	form, err := forms.CreateForm(user.ID, CreateFormInput{
		CategoryID: category.ID,
		Attributes: []FormAttributeInput{
			{Label: "Passport Scan", Type: "FILE"},
			{Label: "Full Name", Type: "INPUT"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Form{}).Where("id = ?", form.ID).Update("visa_id", visa.ID).Error)

	loaded, err := svc.VisaByID(visa.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Form)
	require.Len(t, loaded.Form.Attributes, 2)
	assert.Equal(t, "Full Name", loaded.Form.Attributes[0].Label)
	assert.Equal(t, "Passport Scan", loaded.Form.Attributes[1].Label)

	_, err = svc.VisaByID("missing")
	require.EqualError(t, err, "visa not found")
}

func TestSoftDeleteStampsDeletedBy(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	service, _ := createTestCatalog(t, db)

	require.NoError(t, svc.DeleteService(user.ID, service.ID))

	_, err := svc.ServiceByID(service.ID)
	require.EqualError(t, err, "service not found")

	var raw models.Service
	require.NoError(t, db.Unscoped().First(&raw, "id = ?", service.ID).Error)
	assert.Equal(t, user.ID, raw.DeletedBy)
	assert.True(t, raw.DeletedAt.Valid)

	require.EqualError(t, svc.DeleteService(user.ID, service.ID), "service not found")
}

func TestUpdateCategoryAttribute(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db, testLogger())
	user := createTestUser(t, db, "admin@example.com")
	_, category := createTestCatalog(t, db)

	attr := &models.CategoryAttribute{Name: "processing_time", Value: "3 days", CategoryID: category.ID}
	require.NoError(t, db.Create(attr).Error)

	value := "5 days"
	updated, err := svc.UpdateCategoryAttribute(user.ID, attr.ID, UpdateCategoryAttributeInput{Value: &value})
	require.NoError(t, err)
	assert.Equal(t, "processing_time", updated.Name)
	assert.Equal(t, "5 days", updated.Value)

	_, err = svc.UpdateCategoryAttribute(user.ID, "missing", UpdateCategoryAttributeInput{Value: &value})
	require.EqualError(t, err, "category attribute not found")
}
