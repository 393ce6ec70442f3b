// Package web provides API routes for the web server.
package web

import (
	"net/http"
	"time"

	"github.com/PancyStudios/HelperBotGo/internal/ai"
	"github.com/PancyStudios/HelperBotGo/internal/music"
	"github.com/gin-gonic/gin"
)

// BotStatus reports the gateway connection.
type BotStatus interface {
	IsReady() bool
	GuildCount() int
	Uptime() time.Duration
}

// MusicStatus exposes playback state.
type MusicStatus interface {
	Guilds() []string
	Snapshot(guildID string) music.Snapshot
}

// AIStatus exposes the resolver preference.
type AIStatus interface {
	Current() ai.ProviderName
	Providers() map[ai.ProviderName]bool
}

// ChannelStatus lists the activated channels.
type ChannelStatus interface {
	List() []string
}

// Deps are the components the API reports on.
type Deps struct {
	Bot      BotStatus
	Music    MusicStatus
	AI       AIStatus
	Channels ChannelStatus
	Version  string
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, d Deps) {
	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", d.statusHandler)
		api.GET("/ai", d.aiHandler)
		api.GET("/channels", d.channelsHandler)
		api.GET("/music", d.musicHandler)
		api.GET("/music/:guildId", d.guildMusicHandler)
	}
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "HelperBot Go is running",
	})
}

// Status summarizes the bot. It backs /api/status and the MQTT status request.
func (d Deps) Status() map[string]interface{} {
	return map[string]interface{}{
		"status":  "ok",
		"version": d.Version,
		"bot": gin.H{
			"isOnline": d.Bot.IsReady(),
			"guilds":   d.Bot.GuildCount(),
			"uptime":   d.Bot.Uptime().Round(time.Second).String(),
		},
		"ai": gin.H{
			"current": d.AI.Current(),
		},
		"activeChannels": len(d.Channels.List()),
		"musicGuilds":    len(d.Music.Guilds()),
	}
}

func (d Deps) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, d.Status())
}

func (d Deps) aiHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current":   d.AI.Current(),
		"providers": d.AI.Providers(),
	})
}

func (d Deps) channelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"channels": d.Channels.List(),
	})
}

func (d Deps) musicHandler(c *gin.Context) {
	guilds := d.Music.Guilds()
	snapshots := make([]music.Snapshot, 0, len(guilds))
	for _, id := range guilds {
		snapshots = append(snapshots, d.Music.Snapshot(id))
	}
	c.JSON(http.StatusOK, gin.H{
		"guilds": snapshots,
	})
}

func (d Deps) guildMusicHandler(c *gin.Context) {
	c.JSON(http.StatusOK, d.Music.Snapshot(c.Param("guildId")))
}
