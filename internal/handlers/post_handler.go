package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ideanote/internal/middleware"
	"ideanote/internal/models"
	"ideanote/internal/services"
)

func PostIdea(p *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Contents []interface{} `json:"contents" binding:"required"`
			Category string        `json:"category"`
			Privacy  bool          `json:"privacy"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("post contents are required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		post, err := p.PostIdea(c.Request.Context(), claims.Username, req.Contents, req.Category, req.Privacy)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(post, "idea posted"))
	}
}

func RemovePost(p *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID := strings.TrimSpace(c.Param("id"))
		if postID == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("post ID is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		if err := p.RemovePost(c.Request.Context(), claims.Username, postID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "idea removed"))
	}
}

func Upvote(p *services.PostService) gin.HandlerFunc {
	return voteHandler(p, true)
}

func Downvote(p *services.PostService) gin.HandlerFunc {
	return voteHandler(p, false)
}

func voteHandler(p *services.PostService, up bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID := strings.TrimSpace(c.Param("id"))
		if postID == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("post ID is required"))
			return
		}

		var req struct {
			Owner string `json:"owner" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("post owner is required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var err error
		if up {
			err = p.Upvote(c.Request.Context(), req.Owner, postID, claims.Username)
		} else {
			err = p.Downvote(c.Request.Context(), req.Owner, postID, claims.Username)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "vote recorded"))
	}
}

func Favorite(p *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ref models.PostRef
		if err := c.ShouldBindJSON(&ref); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("owner and post_id are required"))
			return
		}

		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		if err := p.Favorite(c.Request.Context(), claims.Username, ref); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "added to favorites"))
	}
}

func Favorites(p *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.Param("username"))
		if username == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("username is required"))
			return
		}

		refs, err := p.Favorites(c.Request.Context(), username)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(refs, ""))
	}
}

func Discover(p *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		posts, err := p.Discover(c.Request.Context(), claims.Username, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(posts, ""))
	}
}
