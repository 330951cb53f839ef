package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tildelab/tildes-backend/internal/middleware"
	"github.com/tildelab/tildes-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams the class roster to the teacher over WebSocket.
type MonitorHandler struct {
	studentService *service.StudentService
	interval       time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(studentService *service.StudentService, interval time.Duration, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		studentService: studentService,
		interval:       interval,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ClassMonitorStream godoc
// WS /ws/class/:code/monitor?token=...
// Pushes the roster (name/score/progress) on a fixed interval until the
// teacher disconnects. The token must belong to the monitored class.
func (h *MonitorHandler) ClassMonitorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	classCode := c.Param("code")
	if claims.ClassCode != classCode {
		c.JSON(http.StatusForbidden, gin.H{"error": "token does not match class"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("class", classCode).Logger()
	wsLog.Info().Msg("Teacher monitor connected")

	// Reader goroutine: we never expect messages, but reading is what
	// detects the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		students, err := h.studentService.ListByClass(c.Request.Context(), classCode)
		if err != nil {
			wsLog.Error().Err(err).Msg("roster read failed")
			return
		}
		if err := conn.WriteJSON(gin.H{"students": students}); err != nil {
			wsLog.Debug().Msg("Connection closed")
			return
		}

		select {
		case <-done:
			wsLog.Debug().Msg("Client disconnected")
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
