package handlers

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gin-gonic/gin"

	"ideanote/internal/helpers"
	"ideanote/internal/middleware"
	"ideanote/internal/models"
	"ideanote/internal/services"
)

// ViewProfile returns a user's profile with posts filtered by privacy
// for the requesting viewer.
func ViewProfile(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.Param("username"))
		if username == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("username is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		user, err := u.GetProfile(c.Request.Context(), username, claims.Username)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

func FollowUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Target string `json:"target" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("target username is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		if err := u.Follow(c.Request.Context(), claims.Username, req.Target); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "now following "+req.Target))
	}
}

func Notifications(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		notes, err := u.Notifications(c.Request.Context(), claims.Username)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(notes, ""))
	}
}

func SearchUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Query string `json:"query" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("search query is required"))
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		users, err := u.Search(c.Request.Context(), req.Query, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(users, ""))
	}
}

func ChangeUsername(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("new username is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		if err := u.ChangeUsername(c.Request.Context(), claims.Username, req.Username); err != nil {
			respondError(c, err)
			return
		}

		// The session carries the old name; force a fresh login.
		isProduction := os.Getenv("GIN_MODE") == "production"
		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "username changed, please log in again"))
	}
}

func ChangePassword(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Current string `json:"current" binding:"required"`
			Next    string `json:"next" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("current and next passwords are required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		if err := u.ChangePassword(c.Request.Context(), claims.Username, req.Current, req.Next); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "password changed"))
	}
}

func ChangeTheme(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Theme string `json:"theme" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("theme is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		user, err := u.UpdateTheme(c.Request.Context(), claims.Username, req.Theme)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, "theme updated"))
	}
}

// ChangeProfilePic sets the profile image to an already-hosted URL.
func ChangeProfilePic(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ImageURL string `json:"imageUrl" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("imageUrl is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		user, err := u.UpdateImage(c.Request.Context(), claims.Username, req.ImageURL)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, "profile picture updated"))
	}
}

// UploadProfilePic pushes the submitted image to Cloudinary and stores
// the hosted URL on the profile.
func UploadProfilePic(u *services.UserService, cld *cloudinary.Cloudinary) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cld == nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("image uploads are not configured"))
			return
		}

		var req struct {
			ImageData string `json:"image_data" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("image_data is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		url, err := helpers.UploadProfileImage(c.Request.Context(), cld, req.ImageData)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		user, err := u.UpdateImage(c.Request.Context(), claims.Username, url)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(user, "profile picture uploaded"))
	}
}

// DeleteAccount removes the user's document. Follower lists elsewhere
// keep the stale name; they are weak references.
func DeleteAccount(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		if err := u.DeleteAccount(c.Request.Context(), claims.Username); err != nil {
			respondError(c, err)
			return
		}

		isProduction := os.Getenv("GIN_MODE") == "production"
		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "account deleted"))
	}
}
