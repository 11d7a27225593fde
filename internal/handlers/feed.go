package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/pawgrove/pawgrove/backend/internal/errors"
	"github.com/pawgrove/pawgrove/backend/internal/feed"
	"github.com/pawgrove/pawgrove/backend/internal/logger"
	"github.com/pawgrove/pawgrove/backend/internal/middleware"
	"github.com/pawgrove/pawgrove/backend/internal/util"
	"gorm.io/gorm"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// GetFeed returns the viewer's ranked, diversity-constrained feed
// GET /api/posts/feed?viewerId=&scope=&afterCursor=&limit=
func (h *Handlers) GetFeed(c *gin.Context) {
	viewerID := c.Query("viewerId")
	scopeStr := c.DefaultQuery("scope", string(feed.ScopeAll))
	afterCursor := c.Query("afterCursor")
	limitStr := c.DefaultQuery("limit", fmt.Sprintf("%d", defaultFeedLimit))

	var details []string
	if viewerID == "" {
		details = append(details, "viewerId is required")
	}
	if !feed.ValidScope(scopeStr) {
		details = append(details, "scope must be one of: all, following")
	}
	limit, err := util.ParseIntParam(limitStr)
	if err != nil {
		details = append(details, "limit must be an integer")
	} else if limit < 1 || limit > maxFeedLimit {
		details = append(details, fmt.Sprintf("limit must be between 1 and %d", maxFeedLimit))
	}

	if len(details) > 0 {
		respondError(c, apierrors.ValidationError("Invalid query parameters", details...))
		return
	}

	page, err := h.feed.Page(c.Request.Context(), viewerID, feed.Scope(scopeStr), afterCursor, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apierrors.NotFound("Viewer"))
			return
		}

		logger.ErrorWithFields("failed to build feed", err)
		middleware.RecordError("feed")
		respondError(c, apierrors.InternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, page)
}

// respondError renders an APIError as the wire format the feed API uses:
// a top-level error string, optional validation details, and for internal
// errors the underlying message alongside a generic error string.
func respondError(c *gin.Context, apiErr *apierrors.APIError) {
	body := gin.H{}

	switch apiErr.Code {
	case apierrors.ErrValidation:
		body["error"] = apiErr.Message
		body["details"] = apiErr.Details
	case apierrors.ErrInternalError:
		body["error"] = "Internal server error"
		body["message"] = apiErr.Message
	default:
		body["error"] = apiErr.Message
	}

	c.JSON(apiErr.Status, body)
}
