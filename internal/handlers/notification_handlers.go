package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/models"
	"golang.org/x/sync/errgroup"
)

//
// --- Notification Handlers ---
//

// AddNotification is an internal helper used by other handlers (the match
// sweep, account actions) to create new notifications.
// NOTE: This function must be called from within a database transaction (tx).
func (h *Handlers) AddNotification(tx *sql.Tx, userID int64, message string, link string) error {
	var nullLink sql.NullString
	if link != "" {
		nullLink = sql.NullString{String: link, Valid: true}
	}

	query := `
		INSERT INTO notifications
		(user_id, message, link, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)`

	_, err := tx.Exec(query, userID, message, nullLink, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}

	return nil
}

// ListNotifications is the handler for GET /v1/notifications
// It returns a page of the caller's notifications (newest first), the total
// matching count, and the unread count.
// Query params: limit (default 20), offset (default 0), unreadOnly (default false).
func (h *Handlers) ListNotifications(c *gin.Context) {
	// 1. --- Get User ID & Params ---
	userID := currentUserID(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}
	unreadOnly := c.DefaultQuery("unreadOnly", "false") == "true"

	// 2. --- Build the List Filter ---
	listQuery := `
		SELECT id, user_id, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = ?`
	countQuery := `SELECT COUNT(*) FROM notifications WHERE user_id = ?`
	if unreadOnly {
		listQuery += ` AND is_read = 0`
		countQuery += ` AND is_read = 0`
	}
	listQuery += `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	// 3. --- Run the Three Reads Concurrently ---
	// The page, the total and the unread count are independent read-only
	// queries, so we issue them together and wait for all three.
	notifications := []*models.Notification{}
	var total, unreadCount int

	var g errgroup.Group
	g.Go(func() error {
		rows, err := h.DB.Query(listQuery, userID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var notif models.Notification
			if err := rows.Scan(
				&notif.ID,
				&notif.UserID,
				&notif.Message,
				&notif.Link,
				&notif.IsRead,
				&notif.CreatedAt,
			); err != nil {
				return err
			}
			notifications = append(notifications, &notif)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return h.DB.QueryRow(countQuery, userID).Scan(&total)
	})
	g.Go(func() error {
		return h.DB.QueryRow(
			"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0",
			userID,
		).Scan(&unreadCount)
	})

	if err := g.Wait(); err != nil {
		serverError(c, "list notifications", err)
		return
	}

	// 4. --- Send Success Response ---
	respondData(c, http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"unreadCount":   unreadCount,
	})
}

// GetUnreadCount is the handler for GET /v1/notifications/unread-count
// A lightweight endpoint for badge polling.
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	userID := currentUserID(c)

	var count int
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0",
		userID,
	).Scan(&count)
	if err != nil {
		serverError(c, "unread count", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"count": count})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
// The update is conditional on both id and user_id, so the ownership check
// and the mutation are a single atomic statement. A zero row count is then
// resolved into 404 (no such notification) or 403 (someone else's).
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	// 1. --- Get IDs ---
	userID := currentUserID(c)
	notificationID := c.Param("id")

	// 2. --- Atomic Conditional Update ---
	result, err := h.DB.Exec(
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		serverError(c, "mark notification read", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "mark notification read", err)
		return
	}

	// 3. --- Resolve Zero-Row Outcomes ---
	if rowsAffected == 0 {
		if !h.notificationExists(c, notificationID) {
			return
		}
	}

	// 4. --- Return the Updated Record ---
	var notif models.Notification
	err = h.DB.QueryRow(`
		SELECT id, user_id, message, link, is_read, created_at
		FROM notifications
		WHERE id = ?`, notificationID).Scan(
		&notif.ID,
		&notif.UserID,
		&notif.Message,
		&notif.Link,
		&notif.IsRead,
		&notif.CreatedAt,
	)
	if err != nil {
		serverError(c, "fetch updated notification", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"notification": notif})
}

// MarkAllNotificationsRead is the handler for PATCH /v1/notifications/read-all
// The filter is scoped to the caller, so no per-record ownership check is
// needed. The affected count is deliberately not reported.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID := currentUserID(c)

	_, err := h.DB.Exec(
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0",
		userID,
	)
	if err != nil {
		serverError(c, "mark all notifications read", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"marked": true})
}

// DeleteNotification is the handler for DELETE /v1/notifications/:id
// Same atomic ownership shape as MarkNotificationAsRead, terminating in a
// delete.
func (h *Handlers) DeleteNotification(c *gin.Context) {
	userID := currentUserID(c)
	notificationID := c.Param("id")

	result, err := h.DB.Exec(
		"DELETE FROM notifications WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		serverError(c, "delete notification", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "delete notification", err)
		return
	}

	if rowsAffected == 0 {
		if !h.notificationExists(c, notificationID) {
			return
		}
		// The row exists and belongs to the caller, so a concurrent request
		// must have deleted it first. Treat as gone.
		respondError(c, http.StatusNotFound, CodeNotFound, "Notification not found")
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// notificationExists distinguishes "not found" from "not yours" after a
// conditional mutation touched zero rows. It writes the error response and
// returns false unless the record exists and is owned by the caller.
func (h *Handlers) notificationExists(c *gin.Context, notificationID string) bool {
	userID := currentUserID(c)

	var ownerID int64
	err := h.DB.QueryRow(
		"SELECT user_id FROM notifications WHERE id = ?",
		notificationID,
	).Scan(&ownerID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, CodeNotFound, "Notification not found")
		return false
	}
	if err != nil {
		serverError(c, "check notification owner", err)
		return false
	}
	if ownerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "You do not have permission to modify this notification")
		return false
	}
	return true
}
