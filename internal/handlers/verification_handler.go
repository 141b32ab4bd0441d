package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"samurai/internal/services"
)

type VerificationHandler struct {
	svc    services.VerificationService
	logger *zap.Logger
}

func NewVerificationHandler(svc services.VerificationService, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{svc: svc, logger: logger}
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// @Summary      Начать регистрацию
// @Description  Генерирует 4 кода, отправляет правильный на email и возвращает все 4 для выбора
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Param        body  body      services.StartVerificationRequest  true  "Данные регистрации"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      409   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /register-start-verification [post]
func (h *VerificationHandler) StartVerification(c *gin.Context) {
	var req services.StartVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	codes, err := h.svc.StartVerification(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailRequired):
			fail(c, http.StatusBadRequest, "Email is required for verification.", nil)
		case errors.Is(err, services.ErrAccountExists):
			fail(c, http.StatusConflict, "An account with this email or phone number already exists.", nil)
		case errors.Is(err, services.ErrSendFailed):
			fail(c, http.StatusInternalServerError,
				"Could not send the verification email. Please check the address and try again.", err)
		default:
			h.logger.Error("[verify][start] unexpected error", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Verification could not be started.", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "A verification code has been sent to your email. Please check your inbox.",
		"codes":   codes,
	})
}

// @Summary      Подтвердить код
// @Description  Проверяет выбранный код; при успехе создаёт аккаунт и удаляет сессию
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Param        body  body      VerifyCodeRequest  true  "Email и код"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /verify-code [post]
func (h *VerificationHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body.", err)
		return
	}

	account, err := h.svc.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			fail(c, http.StatusNotFound, "Verification session is invalid or has expired. Please register again.", nil)
		case errors.Is(err, services.ErrSessionExpired):
			fail(c, http.StatusBadRequest, "The verification code has expired. Please request a new one.", nil)
		case errors.Is(err, services.ErrCodeMismatch):
			fail(c, http.StatusBadRequest, "Incorrect verification code. Please check your email and try again.", nil)
		case errors.Is(err, services.ErrAccountExists):
			fail(c, http.StatusConflict, "An account with this email or phone number already exists.", nil)
		default:
			h.logger.Error("[verify][confirm] unexpected error", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Could not complete registration. Please try again.", nil)
		}
		return
	}

	resp := gin.H{
		"success": true,
		"message": "Verification successful! Your account has been created.",
	}
	if account != nil {
		resp["account"] = account
	}
	c.JSON(http.StatusOK, resp)
}
