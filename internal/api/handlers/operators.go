package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/ballsim/internal/admin"
)

// OperatorMe returns the authenticated operator
func OperatorMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operator": operatorFrom(c)})
	}
}

// GetAuditLogs returns recent operator actions
func GetAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := parsePagination(c, 50, 500)
		logs, err := admin.GetOperatorAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[API] audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}
