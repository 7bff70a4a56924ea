package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	middlewares "kyc-hub/middleware"
	"kyc-hub/services"
)

func (h *Handler) sameSite() http.SameSite {
	switch h.Cookie.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, s *services.Session) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "token",
		Value:    s.Token,
		Path:     "/",
		Domain:   h.Cookie.Domain,
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		Secure:   h.Cookie.Secure,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Domain:   h.Cookie.Domain,
		MaxAge:   -1,
		Secure:   h.Cookie.Secure,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

func sessionBody(s *services.Session) gin.H {
	return gin.H{
		"message":    "Login successful",
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"user":       s.User,
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.Auth.Signup(c.Request.Context(), services.SignupInput{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		Role:     input.Role,
	}, c.ClientIP())
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup successful. Please verify the OTP sent to your email",
		"user":    user,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), input.Email, input.Password, c.ClientIP())
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, sessionBody(session))
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	session, err := h.Auth.VerifyOTP(c.Request.Context(), input.Email, input.OTP, c.ClientIP())
	if err != nil {
		h.fail(c, err, "User")
		return
	}

	h.setSessionCookie(c, session)
	body := sessionBody(session)
	body["message"] = "Email verified successfully"
	c.JSON(http.StatusOK, body)
}

func (h *Handler) ResendOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := h.Auth.ResendOTP(c.Request.Context(), input.Email); err != nil {
		h.fail(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middlewares.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), claims, c.ClientIP()); err != nil {
		h.fail(c, err, "Session")
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := h.Auth.ChangePassword(c.Request.Context(), userID, input.CurrentPassword, input.NewPassword, c.ClientIP())
	if err != nil {
		h.fail(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
