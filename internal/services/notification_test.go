package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotificationPublishes(t *testing.T) {
	db := newTestDB(t)
	hub := &recordingHub{}
	svc := NewNotificationService(db, hub)
	user := createTestUser(t, db, "reader@example.com")

	notification, err := svc.Create("Form Submission", "Your form has been submitted successfully", user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID)
	assert.False(t, notification.IsRead)

	require.Equal(t, 1, hub.count())
	assert.Equal(t, notification.ID, hub.published[0].ID)
}

func TestUserNotifications(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db, &recordingHub{})
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	_, err := svc.Create("A", "for alice", alice.ID)
	require.NoError(t, err)
	_, err = svc.Create("B", "also for alice", alice.ID)
	require.NoError(t, err)
	_, err = svc.Create("C", "for bob", bob.ID)
	require.NoError(t, err)

	page, err := svc.UserNotifications(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Notifications, 2)
}

func TestAdminNotificationsFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db, &recordingHub{})
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	first, err := svc.Create("A", "passport ready", alice.ID)
	require.NoError(t, err)
	_, err = svc.Create("B", "payment received", bob.ID)
	require.NoError(t, err)

	all, err := svc.AdminNotifications(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	// search hits the recipient's email as well as the message text
	byEmail, err := svc.AdminNotifications(&NotificationFilter{Search: "alice@"})
	require.NoError(t, err)
	require.Len(t, byEmail.Notifications, 1)
	assert.Equal(t, first.ID, byEmail.Notifications[0].ID)

	byMessage, err := svc.AdminNotifications(&NotificationFilter{Search: "PAYMENT"})
	require.NoError(t, err)
	require.Len(t, byMessage.Notifications, 1)
	assert.Equal(t, bob.ID, byMessage.Notifications[0].UserID)

	_, err = svc.MarkRead(first.ID)
	require.NoError(t, err)

	unread := false
	pending, err := svc.AdminNotifications(&NotificationFilter{IsRead: &unread})
	require.NoError(t, err)
	require.Len(t, pending.Notifications, 1)
	assert.Equal(t, bob.ID, pending.Notifications[0].UserID)

	_, err = svc.AdminNotifications(&NotificationFilter{StartDate: "yesterday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db, &recordingHub{})
	user := createTestUser(t, db, "reader@example.com")

	first, err := svc.Create("A", "one", user.ID)
	require.NoError(t, err)
	_, err = svc.Create("B", "two", user.ID)
	require.NoError(t, err)

	read, err := svc.MarkRead(first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = svc.MarkRead("missing")
	require.EqualError(t, err, "notification not found")

	require.NoError(t, svc.MarkAllRead(user.ID))

	unread := false
	page, err := svc.AdminNotifications(&NotificationFilter{IsRead: &unread})
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)

	// nothing unread left is fine
	require.NoError(t, svc.MarkAllRead(user.ID))

	loaded, err := svc.NotificationByID(first.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsRead)
	require.NotNil(t, loaded.User)
	assert.Equal(t, user.ID, loaded.User.ID)

	_, err = svc.NotificationByID("missing")
	require.EqualError(t, err, "notification not found")
}
