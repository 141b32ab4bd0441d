package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"samurai/internal/models"
	"samurai/internal/services"
)

type AuthHandler struct {
	accounts services.AccountService
	resets   services.PasswordResetService
	logger   *zap.Logger
}

func NewAuthHandler(accounts services.AccountService, resets services.PasswordResetService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, resets: resets, logger: logger}
}

// @Summary      Вход студента
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Email and password are required.", nil)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid email or password.", nil)
			return
		}
		h.logger.Error("[auth][login] failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Login failed.", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Login successful",
		"account":      res.Account,
		"access_token": res.AccessToken,
		"expires_at":   res.ExpiresAt,
	})
}

// @Summary      Текущий аккаунт
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.Account
// @Failure      401  {object}  map[string]interface{}
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			fail(c, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		h.logger.Error("[auth][me] failed", zap.Int("account_id", accountID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Could not load account.", nil)
		return
	}
	c.JSON(http.StatusOK, account)
}

// @Summary      Запросить сброс пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, services.ErrEmailRequired) {
			fail(c, http.StatusBadRequest, "Email is required.", nil)
			return
		}
		h.logger.Error("[password-reset] request failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Could not process the request.", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If the email is registered, a password reset link has been sent.",
	})
}

// @Summary      Сбросить пароль по токену
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Router       /reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}
	err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password has been reset. You can log in now."})
	case errors.Is(err, services.ErrResetFieldsEmpty),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrResetTokenInvalid),
		errors.Is(err, services.ErrResetTokenUsed),
		errors.Is(err, services.ErrResetTokenExpired):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error("[password-reset] reset failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Could not reset the password.", nil)
	}
}
