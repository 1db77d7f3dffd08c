package handlers

import (
	"fmt"
	"html"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/ballsim/internal/game"
	"github.com/playmatatu/ballsim/internal/ws"
)

// ListStages returns every live stage
func ListStages(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stages := m.Stages()
		out := make([]gin.H, 0, len(stages))
		for _, s := range stages {
			out = append(out, stageSummary(s))
		}
		var defaultToken string
		if d := m.DefaultStage(); d != nil {
			defaultToken = d.Token
		}
		c.JSON(http.StatusOK, gin.H{"stages": out, "default": defaultToken})
	}
}

// GetStageFrame returns the stage's current frame, falling back to the
// frame cache for stages hosted by another instance
func GetStageFrame(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := m.CurrentFrame(c.Request.Context(), c.Param("token"))
		if err != nil {
			respondStageError(c, err)
			return
		}
		c.Header("X-Stage-Token", f.Token)
		c.Header("X-Stage-Tick", strconv.FormatInt(f.Tick, 10))
		c.JSON(http.StatusOK, f)
	}
}

// GetStageHTML renders the stage as a static HTML page
func GetStageHTML(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.GetStage(c.Param("token"))
		if err != nil {
			respondStageError(c, err)
			return
		}
		page := fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>stage %s</title></head><body><div class='stage' style='position:relative;width:%gpx;height:%gpx;border:1px solid #333'>%s</div></body></html>`,
			html.EscapeString(s.Token), s.Width(), s.Height(), s.Markup())
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

// ListSnapshots returns recorded snapshots for a stage
func ListSnapshots(m *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		limit, offset := parsePagination(c, 20, 200)
		snaps, err := m.ListSnapshots(c.Request.Context(), token, limit, offset)
		if err != nil {
			log.Printf("[API] list snapshots for %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list snapshots"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"snapshots": snaps, "limit": limit, "offset": offset, "persistence": m.HasDatabase()})
	}
}

// CreateStage creates a stage; omitted fields fall back to the configured defaults
func CreateStage(m *game.Manager, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := m.DefaultParams()
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&p); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage parameters"})
				return
			}
		}

		s, err := m.CreateStage(c.Request.Context(), p)
		if err != nil {
			audit(c, db, "create_stage", map[string]interface{}{"error": err.Error()}, false)
			respondStageError(c, err)
			return
		}
		audit(c, db, "create_stage", map[string]interface{}{"token": s.Token, "balls": s.BallCount()}, true)
		log.Printf("[API] Operator %s created stage %s", operatorFrom(c), s.Token)
		c.JSON(http.StatusCreated, stageSummary(s))
	}
}

// DeleteStage removes a stage and disconnects its viewers
func DeleteStage(m *game.Manager, hub *ws.Hub, db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := m.DeleteStage(c.Request.Context(), token); err != nil {
			respondStageError(c, err)
			return
		}
		hub.CloseRoom(token)
		audit(c, db, "delete_stage", map[string]interface{}{"token": token}, true)
		c.JSON(http.StatusOK, gin.H{"deleted": token})
	}
}

// stageAction wraps an operator mutation: look up, mutate, broadcast, audit.
func stageAction(m *game.Manager, hub *ws.Hub, db *sqlx.DB, action string, apply func(c *gin.Context, s *game.Stage) (map[string]interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.GetStage(c.Param("token"))
		if err != nil {
			respondStageError(c, err)
			return
		}

		details, err := apply(c, s)
		if details == nil {
			details = map[string]interface{}{}
		}
		details["token"] = s.Token
		if err != nil {
			details["error"] = err.Error()
			audit(c, db, action, details, false)
			respondStageError(c, err)
			return
		}

		s.Touch(time.Now())
		f := s.Frame()
		hub.BroadcastFrame(f)
		audit(c, db, action, details, true)
		c.JSON(http.StatusOK, f)
	}
}

// RandomizeStage re-scatters every ball
func RandomizeStage(m *game.Manager, hub *ws.Hub, db *sqlx.DB) gin.HandlerFunc {
	return stageAction(m, hub, db, "randomize", func(c *gin.Context, s *game.Stage) (map[string]interface{}, error) {
		s.Randomize()
		return nil, nil
	})
}

// FillStage appends resting balls at the origin
func FillStage(m *game.Manager, hub *ws.Hub, db *sqlx.DB) gin.HandlerFunc {
	return stageAction(m, hub, db, "fill", func(c *gin.Context, s *game.Stage) (map[string]interface{}, error) {
		p := game.FillParams{Material: game.DefaultMaterial()}
		if err := c.ShouldBindJSON(&p); err != nil {
			return nil, fmt.Errorf("%w: %v", game.ErrInvalidParams, err)
		}
		return map[string]interface{}{"quantity": p.Quantity}, s.Fill(p)
	})
}

// PushBall appends one ball
func PushBall(m *game.Manager, hub *ws.Hub, db *sqlx.DB) gin.HandlerFunc {
	return stageAction(m, hub, db, "push_ball", func(c *gin.Context, s *game.Stage) (map[string]interface{}, error) {
		p := game.BallParams{Material: game.DefaultMaterial()}
		if err := c.ShouldBindJSON(&p); err != nil {
			return nil, fmt.Errorf("%w: %v", game.ErrInvalidParams, err)
		}
		return map[string]interface{}{"x": p.X, "y": p.Y}, s.PushBall(p)
	})
}

// SetPairwise toggles the ball-to-ball sweep
func SetPairwise(m *game.Manager, hub *ws.Hub, db *sqlx.DB) gin.HandlerFunc {
	return stageAction(m, hub, db, "set_pairwise", func(c *gin.Context, s *game.Stage) (map[string]interface{}, error) {
		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
			return nil, fmt.Errorf("%w: enabled (bool) required", game.ErrInvalidParams)
		}
		s.SetPairwise(*req.Enabled)
		return map[string]interface{}{"enabled": *req.Enabled}, nil
	})
}

// StepStage advances a stage by ?ticks=N (default 1, max 1000)
func StepStage(m *game.Manager, hub *ws.Hub, db *sqlx.DB) gin.HandlerFunc {
	return stageAction(m, hub, db, "step", func(c *gin.Context, s *game.Stage) (map[string]interface{}, error) {
		ticks, err := strconv.Atoi(c.DefaultQuery("ticks", "1"))
		if err != nil || ticks < 1 || ticks > 1000 {
			return nil, fmt.Errorf("%w: ticks must be between 1 and 1000", game.ErrInvalidParams)
		}
		for i := 0; i < ticks; i++ {
			s.Advance()
		}
		return map[string]interface{}{"ticks": ticks}, nil
	})
}
