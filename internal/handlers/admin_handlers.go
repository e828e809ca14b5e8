package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/models"
)

//
// --- Admin Handlers ---
//
// Everything here sits behind AuthMiddleware + AdminMiddleware.
//

// AdminStats is the KPI block for the admin dashboard.
type AdminStats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalProperties     int `json:"totalProperties"`
	ActiveProperties    int `json:"activeProperties"`
	TotalDemands        int `json:"totalDemands"`
	TotalMatches        int `json:"totalMatches"`
	NewLeads            int `json:"newLeads"`
	UnreadNotifications int `json:"unreadNotifications"`
}

// RecentUser is the trimmed user shape shown on the dashboard.
type RecentUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetAdminStats is the handler for GET /v1/admin/stats
// It returns aggregate counts plus the five most recently registered users.
func (h *Handlers) GetAdminStats(c *gin.Context) {
	stats := AdminStats{}

	// 1. --- Aggregate Counts ---
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM users", &stats.TotalUsers},
		{"SELECT COUNT(*) FROM properties", &stats.TotalProperties},
		{"SELECT COUNT(*) FROM properties WHERE status = 'ACTIVE'", &stats.ActiveProperties},
		{"SELECT COUNT(*) FROM demands", &stats.TotalDemands},
		{"SELECT COUNT(*) FROM matches", &stats.TotalMatches},
		{"SELECT COUNT(*) FROM leads", &stats.NewLeads},
		{"SELECT COUNT(*) FROM notifications WHERE is_read = 0", &stats.UnreadNotifications},
	}
	for _, count := range counts {
		if err := h.DB.QueryRow(count.query).Scan(count.dest); err != nil {
			serverError(c, "admin stats count", err)
			return
		}
	}

	// 2. --- Recent Users ---
	rows, err := h.DB.Query(`
		SELECT id, email, full_name, role, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT 5`)
	if err != nil {
		serverError(c, "admin stats recent users", err)
		return
	}
	defer rows.Close()

	recentUsers := []RecentUser{}
	for rows.Next() {
		var u RecentUser
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			serverError(c, "scan recent user", err)
			return
		}
		recentUsers = append(recentUsers, u)
	}
	if err = rows.Err(); err != nil {
		serverError(c, "iterate recent users", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"stats":       stats,
		"recentUsers": recentUsers,
	})
}

// GetUsers is the handler for GET /v1/admin/users
func (h *Handlers) GetUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	rows, err := h.DB.Query(`
		SELECT id, role, status, email, full_name, phone_number, created_at, updated_at
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		serverError(c, "list users", err)
		return
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Role,
			&user.Status,
			&user.Email,
			&user.FullName,
			&user.PhoneNumber,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			serverError(c, "scan user row", err)
			return
		}
		users = append(users, &user)
	}
	if err = rows.Err(); err != nil {
		serverError(c, "iterate user rows", err)
		return
	}

	var total int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		serverError(c, "count users", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}

// UserStatusInput defines the JSON input for an account status change.
type UserStatusInput struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// UpdateUserStatus is the handler for PATCH /v1/admin/users/:id/status
// Admins can suspend or reactivate accounts.
func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	targetID := c.Param("id")

	var input UserStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	result, err := h.DB.Exec(
		"UPDATE users SET status = ?, updated_at = ? WHERE id = ?",
		input.Status, time.Now(), targetID,
	)
	if err != nil {
		serverError(c, "update user status", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "update user status", err)
		return
	}
	if rowsAffected == 0 {
		// MySQL reports zero affected rows for a same-value update, so
		// confirm the account actually exists before declaring 404.
		var exists int
		if err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", targetID).Scan(&exists); err != nil {
			serverError(c, "check user exists", err)
			return
		}
		if exists == 0 {
			respondError(c, http.StatusNotFound, CodeNotFound, "User not found")
			return
		}
	}

	respondData(c, http.StatusOK, gin.H{"updated": true})
}

// GetLeads is the handler for GET /v1/admin/leads
func (h *Handlers) GetLeads(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, reference, full_name, email, phone, suburb, property_type, message, created_at
		FROM leads
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		serverError(c, "list leads", err)
		return
	}
	defer rows.Close()

	leads := []*models.Lead{}
	for rows.Next() {
		var lead models.Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.Reference,
			&lead.FullName,
			&lead.Email,
			&lead.Phone,
			&lead.Suburb,
			&lead.PropertyType,
			&lead.Message,
			&lead.CreatedAt,
		); err != nil {
			serverError(c, "scan lead row", err)
			return
		}
		leads = append(leads, &lead)
	}
	if err = rows.Err(); err != nil {
		serverError(c, "iterate lead rows", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"leads": leads})
}
