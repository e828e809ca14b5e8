package handlers

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hushhome/hushhome-golang/internal/auth"
	"github.com/hushhome/hushhome-golang/internal/email"
	"github.com/hushhome/hushhome-golang/internal/models"
)

//
// --- Account & Session Handlers ---
//

// RegisterUserInput defines the expected JSON data for registration.
// The 'binding' tags are used by Gin for automatic validation.
type RegisterUserInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// generateVerificationCode returns a random 6-digit code.
func generateVerificationCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

// Register is the handler for POST /v1/auth/register
// New accounts start 'unverified' and receive a verification code by email.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	// 2. --- Reject Duplicate Emails ---
	var existing int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", input.Email).Scan(&existing); err != nil {
		serverError(c, "check duplicate email", err)
		return
	}
	if existing > 0 {
		respondError(c, http.StatusConflict, CodeConflict, "An account with this email already exists")
		return
	}

	// 3. --- Generate Verification Code ---
	code, err := generateVerificationCode()
	if err != nil {
		serverError(c, "generate verification code", err)
		return
	}
	expiry := time.Now().Add(15 * time.Minute)

	// 4. --- Create User Model ---
	user := &models.User{
		Role:        models.RoleUser,
		Status:      models.StatusUnverified,
		Email:       input.Email,
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Version:     1,

		VerificationCode:   sql.NullString{String: code, Valid: true},
		VerificationExpiry: sql.NullTime{Time: expiry, Valid: true},
	}

	// 5. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		serverError(c, "hash password", err)
		return
	}
	user.PasswordHash = password.Hash

	// 6. --- Save to Database ---
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone_number, created_at, updated_at, version, verification_code, verification_expiry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := h.DB.Exec(query,
		user.Role,
		user.Status,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.PhoneNumber,
		user.CreatedAt,
		user.UpdatedAt,
		user.Version,
		user.VerificationCode,
		user.VerificationExpiry,
	)
	if err != nil {
		serverError(c, "register user", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		serverError(c, "get new user ID", err)
		return
	}
	user.ID = id

	// 7. --- Send Verification Email ---
	if err := email.SendVerificationEmail(user.Email, code); err != nil {
		// Registration already succeeded; the user can ask for a resend.
		log.Printf("ERROR: Failed to send verification email to %s: %v", user.Email, err)
	}

	// 8. --- Send Success Response ---
	respondData(c, http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email for a verification code.",
		"user":    user,
	})
}

// VerifyEmailInput defines the JSON input for email verification.
type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmail is the handler for POST /v1/auth/verify-email
// A matching, unexpired code activates the account and clears the code.
func (h *Handlers) VerifyEmail(c *gin.Context) {
	var input VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	var userID int64
	var code sql.NullString
	var expiry sql.NullTime
	err := h.DB.QueryRow(
		"SELECT id, verification_code, verification_expiry FROM users WHERE email = ? AND status = ?",
		input.Email, models.StatusUnverified,
	).Scan(&userID, &code, &expiry)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, CodeNotFound, "No unverified account found for this email")
		return
	}
	if err != nil {
		serverError(c, "look up unverified account", err)
		return
	}

	if !code.Valid || code.String != input.Code {
		respondError(c, http.StatusForbidden, CodeForbidden, "Invalid verification code")
		return
	}
	if !expiry.Valid || time.Now().After(expiry.Time) {
		respondError(c, http.StatusForbidden, CodeForbidden, "Verification code has expired. Please request a new one.")
		return
	}

	_, err = h.DB.Exec(`
		UPDATE users
		SET status = ?, verification_code = NULL, verification_expiry = NULL, updated_at = ?
		WHERE id = ?`,
		models.StatusActive, time.Now(), userID,
	)
	if err != nil {
		serverError(c, "activate account", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"message": "Email verified. You can now sign in."})
}

// ResendCodeInput defines the JSON input for resending a verification code.
type ResendCodeInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerificationEmail is the handler for POST /v1/auth/resend-code
func (h *Handlers) ResendVerificationEmail(c *gin.Context) {
	var input ResendCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	var userID int64
	err := h.DB.QueryRow(
		"SELECT id FROM users WHERE email = ? AND status = ?",
		input.Email, models.StatusUnverified,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, CodeNotFound, "No unverified account found for this email")
		return
	}
	if err != nil {
		serverError(c, "look up unverified account", err)
		return
	}

	code, err := generateVerificationCode()
	if err != nil {
		serverError(c, "generate verification code", err)
		return
	}

	_, err = h.DB.Exec(
		"UPDATE users SET verification_code = ?, verification_expiry = ?, updated_at = ? WHERE id = ?",
		code, time.Now().Add(15*time.Minute), time.Now(), userID,
	)
	if err != nil {
		serverError(c, "store verification code", err)
		return
	}

	if err := email.SendVerificationEmail(input.Email, code); err != nil {
		log.Printf("ERROR: Failed to send verification email to %s: %v", input.Email, err)
	}

	respondData(c, http.StatusOK, gin.H{"message": "A new verification code has been sent."})
}

// LoginInput defines the JSON input for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/auth/login
// On success it issues the session JWT consumed by the API and web client.
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	// 2. --- Fetch the Account ---
	var user models.User
	err := h.DB.QueryRow(`
		SELECT id, role, status, email, password_hash, full_name, phone_number, created_at, updated_at
		FROM users
		WHERE email = ?`, input.Email).Scan(
		&user.ID,
		&user.Role,
		&user.Status,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.PhoneNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		// Same message as a bad password, so emails cannot be probed.
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		serverError(c, "fetch account for login", err)
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		serverError(c, "compare password", err)
		return
	}
	if !matches {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password")
		return
	}

	// 4. --- Check Account Status ---
	switch user.Status {
	case models.StatusUnverified:
		respondError(c, http.StatusForbidden, CodeForbidden, "Please verify your email before signing in")
		return
	case models.StatusSuspended:
		respondError(c, http.StatusForbidden, CodeForbidden, "Account suspended")
		return
	}

	// 5. --- Issue Token ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		serverError(c, "generate token", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetMe is the handler for GET /v1/auth/me
// The admin web shell calls this to learn the caller's role before
// rendering protected pages.
func (h *Handlers) GetMe(c *gin.Context) {
	userID := currentUserID(c)

	var user models.User
	err := h.DB.QueryRow(`
		SELECT id, role, status, email, full_name, phone_number, created_at, updated_at
		FROM users
		WHERE id = ?`, userID).Scan(
		&user.ID,
		&user.Role,
		&user.Status,
		&user.Email,
		&user.FullName,
		&user.PhoneNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, CodeNotFound, "Account not found")
		return
	}
	if err != nil {
		serverError(c, "fetch current user", err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user})
}
