package httpapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/app"
	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/moderation"
	"github.com/sorsu/tiktalk/internal/storage"
)

// AdminAPI is the moderation control plane: it reads aggregate
// counters from the engine and drives the ban/report stores.
type AdminAPI struct {
	Orch    *app.Orchestrator
	Bans    *moderation.BanList
	Reports *moderation.Reports
	Actions *moderation.ActionLog
	Store   *storage.Store
}

// requireAuth accepts the bearer token minted by Login. The token is
// opaque; possession is the credential.
func requireAuth(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if len(token) < 10 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	c.Set("admin_token", token)
	c.Next()
}

func (a *AdminAPI) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	if err := moderation.VerifyAdmin(a.Store, req.Username, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token := base64.StdEncoding.EncodeToString(fmt.Appendf(nil, "%s:%d", req.Username, time.Now().UnixMilli()))
	session := sessions.Default(c)
	session.Set("admin", req.Username)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("module", "httpapi").Msg("session save")
	}

	log.Info().Str("module", "httpapi").Str("admin", req.Username).Msg("admin login")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"token":    token,
		"username": req.Username,
	})
}

func (a *AdminAPI) ListReports(c *gin.Context) {
	status := domain.ReportStatus(c.Query("status"))
	campus := c.Query("campus")
	reports, err := a.Reports.List(status, campus)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (a *AdminAPI) UpdateReport(c *gin.Context) {
	reportID := c.Param("reportId")
	var req struct {
		Status domain.ReportStatus `json:"status"`
		Action string              `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request"})
		return
	}

	report, err := a.Reports.SetStatus(reportID, req.Status)
	if err != nil {
		if err == moderation.ErrReportNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	action := req.Action
	if action == "" {
		action = "review_report"
	}
	a.logAction(c, moderation.Action{Action: action, ReportID: reportID})

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

func (a *AdminAPI) IssueBan(c *gin.Context) {
	var req struct {
		IP            string `json:"ip" binding:"required"`
		Nickname      string `json:"nickname"`
		Type          string `json:"type" binding:"required"`
		Reason        string `json:"reason" binding:"required"`
		DurationHours int    `json:"durationHours"`
		Scope         string `json:"scope"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	scope := req.Scope
	if scope == "" {
		scope = "all"
	}
	ban := domain.Ban{
		Nickname: req.Nickname,
		Type:     domain.BanType(req.Type),
		Reason:   req.Reason,
		BannedBy: c.GetString("admin_token"),
		Scope:    scope,
	}
	if ban.Type == domain.BanTemporary && req.DurationHours > 0 {
		ban.BannedUntil = moderation.TemporaryUntil(req.DurationHours)
		ban.DurationHours = req.DurationHours
	}

	if err := a.Bans.Add(req.IP, ban); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue ban"})
		return
	}

	actionName := "temporary_ban"
	duration := fmt.Sprintf("%d hours", req.DurationHours)
	if ban.Type == domain.BanPermanent {
		actionName = "permanent_ban"
		duration = "permanent"
	}
	a.logAction(c, moderation.Action{
		Action:   actionName,
		TargetIP: moderation.HashIP(req.IP),
		Reason:   req.Reason,
		Duration: duration,
	})

	// Push the ban to anyone connected from that address right now.
	kicked := a.Orch.DisconnectByIP(req.IP, domain.BanStatus{
		Banned:      true,
		Type:        ban.Type,
		Reason:      ban.Reason,
		BannedUntil: ban.BannedUntil,
	})
	log.Info().Str("module", "httpapi").Int("kicked", kicked).Str("type", string(ban.Type)).Msg("ban issued")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ban issued successfully"})
}

func (a *AdminAPI) ListBans(c *gin.Context) {
	bans, err := a.Bans.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bans"})
		return
	}
	c.JSON(http.StatusOK, bans)
}

func (a *AdminAPI) RemoveBan(c *gin.Context) {
	ipHash := c.Param("ipHash")
	removed, err := a.Bans.RemoveHash(ipHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove ban"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ban not found"})
		return
	}
	a.logAction(c, moderation.Action{Action: "remove_ban", TargetIP: ipHash})
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ban removed successfully"})
}

func (a *AdminAPI) GetStats(c *gin.Context) {
	stats := a.Orch.Stats()
	totalReports, pendingReports := a.Reports.Counts()
	c.JSON(http.StatusOK, gin.H{
		"onlineUsers":      stats.OnlineUsers,
		"totalReports":     totalReports,
		"pendingReports":   pendingReports,
		"activeBans":       a.Bans.Count(),
		"messagesByCenter": stats.MessagesByCampus,
	})
}

func (a *AdminAPI) ListActions(c *gin.Context) {
	actions, err := a.Actions.Recent(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch actions"})
		return
	}
	c.JSON(http.StatusOK, actions)
}

func (a *AdminAPI) logAction(c *gin.Context, action moderation.Action) {
	action.Admin = c.GetString("admin_token")
	if err := a.Actions.Append(action); err != nil {
		log.Error().Err(err).Str("module", "httpapi").Str("action", action.Action).Msg("action log write failed")
	}
}
