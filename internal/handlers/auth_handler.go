package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"ideanote/internal/config"
	"ideanote/internal/helpers"
	"ideanote/internal/models"
	"ideanote/internal/services"
)

// Signup binds only the fields a new account may provide. Posts,
// followers and the rest of the social state always start empty; a
// fresh document cannot arrive with fabricated history.
func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Email    string `json:"email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		user := models.User{
			Username:        req.Username,
			Local:           models.LocalCredentials{Email: req.Email},
			PendingPassword: req.Password,
		}

		created, err := u.Signup(c.Request.Context(), &user)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "account created"))
	}
}

func Login(u *services.UserService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		user, err := u.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		issueSession(c, cfg, user)
	}
}

// FederatedLogin exchanges a provider-issued identity token (gmail or
// facebook) for a local session, if the identity is linked to a user.
func FederatedLogin(u *services.UserService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Provider string `json:"provider" binding:"required,oneof=facebook gmail"`
			Token    string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid request payload"))
			return
		}

		jwksURL := cfg.GmailJWKSURL
		if req.Provider == "facebook" {
			jwksURL = cfg.FacebookJWKSURL
		}

		claims, err := helpers.ValidateFederatedToken(c.Request.Context(), jwksURL, req.Token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("federated token rejected"))
			return
		}

		user, err := u.FederatedLogin(c.Request.Context(), req.Provider, claims.Subject)
		if err != nil {
			respondError(c, err)
			return
		}

		issueSession(c, cfg, user)
	}
}

func issueSession(c *gin.Context, cfg *config.Config, user *models.User) {
	token, err := helpers.MintSessionToken(user.Username, user.ID.String(), cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	isProduction := os.Getenv("GIN_MODE") == "production"
	c.SetCookie(
		"access_token",
		token,
		int(cfg.SessionTTL.Seconds()),
		"/",
		"", // let Gin pick current domain
		isProduction,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// Logout handler
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		isProduction := os.Getenv("GIN_MODE") == "production"
		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}
