package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/ballsim/internal/admin"
	"github.com/playmatatu/ballsim/internal/game"
)

// stageSummary is the listing view of a stage
func stageSummary(s *game.Stage) gin.H {
	return gin.H{
		"token":      s.Token,
		"width":      s.Width(),
		"height":     s.Height(),
		"color":      s.Color(),
		"balls":      s.BallCount(),
		"tick":       s.Tick(),
		"pairwise":   s.Frame().Pairwise,
		"created_at": s.CreatedAt,
	}
}

// respondStageError maps game errors to HTTP statuses
func respondStageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrStageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
	case errors.Is(err, game.ErrInvalidParams):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrTooManyStages):
		c.JSON(http.StatusConflict, gin.H{"error": "stage limit reached"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parsePagination reads limit/offset with sane bounds
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// audit records an operator action against the current route
func audit(c *gin.Context, db *sqlx.DB, action string, details map[string]interface{}, success bool) {
	admin.LogOperatorAction(db, operatorFrom(c), c.ClientIP(), c.FullPath(), action, details, success)
}
