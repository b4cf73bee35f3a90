package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservations/middlewares"
	"github.com/yeremiapane/table-reservations/utils"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

type account struct {
	hash []byte
	role string
}

// AuthController logs in the fixed staff accounts. Accounts without a
// configured password hash cannot log in.
type AuthController struct {
	accounts map[string]account
}

func NewAuthController(adminHash, hostHash string) *AuthController {
	ac := &AuthController{accounts: map[string]account{}}
	if adminHash != "" {
		ac.accounts["admin"] = account{hash: []byte(adminHash), role: middlewares.RoleAdmin}
	}
	if hostHash != "" {
		ac.accounts["host"] = account{hash: []byte(hostHash), role: middlewares.RoleHost}
	}
	if len(ac.accounts) == 0 {
		utils.InfoLogger.Warn("No account password hashes configured, login is disabled")
	}
	return ac
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	acc, ok := ac.accounts[username]
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := utils.GenerateToken(username, acc.role, tokenTTL)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithField("user", username).Info("Login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"role":       acc.role,
		"expires_in": int(tokenTTL.Seconds()),
	})
}

// Logout revokes the bearer token used for this request.
func (ac *AuthController) Logout(c *gin.Context) {
	claims, ok := c.MustGet(middlewares.ContextClaims).(*utils.CustomClaims)
	if !ok || claims.ExpiresAt == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token"))
		return
	}

	utils.RevokeToken(claims.ID, claims.ExpiresAt.Time)
	utils.InfoLogger.WithField("user", claims.Subject).Info("Logged out")
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
