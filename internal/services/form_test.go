package services

import (
	"testing"

	"AE-VISA/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormBuildsAttributeTree(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormService(db, testLogger())
	user := createTestUser(t, db, "creator@example.com")
	_, category := createTestCatalog(t, db)

	form, err := svc.CreateForm(user.ID, CreateFormInput{
		CategoryID: category.ID,
		Attributes: []FormAttributeInput{
			{
				Label:   "Country",
				Type:    "DROPDOWN",
				Options: []string{"UAE", "KSA"},
			},
			{
				Label: "Details",
				Type:  "COLLAPSIBLE_SECTION",
				Children: []FormAttributeInput{
					{Name: "name", Label: "Name", Type: "INPUT", Required: true},
				},
			},
		},
	})
	require.NoError(t, err)

	require.Len(t, form.Attributes, 2)
	assert.Equal(t, "Country", form.Attributes[0].Label)
	assert.Equal(t, models.AttributeDropdown, form.Attributes[0].Type)
	assert.Equal(t, models.StringList{"UAE", "KSA"}, form.Attributes[0].Options)
	assert.False(t, form.Attributes[0].IsChild)
	assert.Nil(t, form.Attributes[0].ParentID)

	section := form.Attributes[1]
	require.Len(t, section.Children, 1)
	child := section.Children[0]
	assert.Equal(t, "Name", child.Label)
	assert.True(t, child.IsChild)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, section.ID, *child.ParentID)
}

func TestCreateFormUnknownTypeFallsBackToField(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormService(db, testLogger())
	user := createTestUser(t, db, "creator@example.com")
	_, category := createTestCatalog(t, db)

	form, err := svc.CreateForm(user.ID, CreateFormInput{
		CategoryID: category.ID,
		Attributes: []FormAttributeInput{
			{Label: "Mystery", Type: "HOLOGRAM"},
		},
	})
	require.NoError(t, err)
	require.Len(t, form.Attributes, 1)
	assert.Equal(t, models.AttributeField, form.Attributes[0].Type)
}

func TestCreateFormCategoryMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormService(db, testLogger())
	user := createTestUser(t, db, "creator@example.com")

	_, err := svc.CreateForm(user.ID, CreateFormInput{
		CategoryID: "no-such-category",
		Attributes: []FormAttributeInput{{Label: "X", Type: "INPUT"}},
	})
	require.EqualError(t, err, "category not found")
}

func TestCreateFormRejectsExcessiveDepth(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormService(db, testLogger())
	user := createTestUser(t, db, "creator@example.com")
	_, category := createTestCatalog(t, db)

	leaf := FormAttributeInput{Label: "Leaf", Type: "INPUT"}
	node := leaf
	for i := 0; i < maxAttributeDepth+1; i++ {
		node = FormAttributeInput{Label: "Section", Type: "COLLAPSIBLE_SECTION", Children: []FormAttributeInput{node}}
	}

	_, err := svc.CreateForm(user.ID, CreateFormInput{
		CategoryID: category.ID,
		Attributes: []FormAttributeInput{node},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum depth")

	// the rejected tree must leave nothing behind
	var count int64
	require.NoError(t, db.Model(&models.FormAttribute{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRootAttributeOrderingFileLast(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormService(db, testLogger())
	user := createTestUser(t, db, "creator@example.com")
	_, category := createTestCatalog(t, db)

	form, err := svc.CreateForm(user.ID, CreateFormInput{
		CategoryID: category.ID,
		Attributes: []FormAttributeInput{
			{Label: "Passport Scan", Type: "FILE"},
			{Label: "Full Name", Type: "INPUT"},
			{Label: "Photo", Type: "FILE"},
			{Label: "Nationality", Type: "DROPDOWN", Options: []string{"UAE"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, form.Attributes, 4)

	labels := make([]string, 0, 4)
	for _, attr := range form.Attributes {
		labels = append(labels, attr.Label)
	}
	// non-FILE attributes first in insertion order, then FILE in insertion order
	assert.Equal(t, []string{"Full Name", "Nationality", "Passport Scan", "Photo"}, labels)
}

func TestFormLookupsByOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewFormService(db, testLogger())
	user := createTestUser(t, db, "creator@example.com")
	_, category := createTestCatalog(t, db)

	visa := &models.Visa{Title: "Golden Visa", CategoryID: category.ID, NormalPrice: 500, VIPPrice: 700, VVIPPrice: 900}
	require.NoError(t, db.Create(visa).Error)

	created, err := svc.CreateForm(user.ID, CreateFormInput{
		CategoryID: category.ID,
		Attributes: []FormAttributeInput{{Label: "Name", Type: "INPUT"}},
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Form{}).Where("id = ?", created.ID).Update("visa_id", visa.ID).Error)

	byVisa, err := svc.FormByVisaID(visa.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byVisa.ID)

	byCategory, err := svc.FormByCategoryID(category.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCategory.ID)

	_, err = svc.FormByID("missing")
	require.EqualError(t, err, "form not found")
}
