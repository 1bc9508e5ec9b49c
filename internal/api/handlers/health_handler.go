package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formloom/formloom-backend/internal/db"
	"github.com/formloom/formloom-backend/internal/socket"
)

type HealthHandler struct {
	pool  *pgxpool.Pool
	cache *db.RedisDB
	hub   *socket.Hub
}

func NewHealthHandler(pool *pgxpool.Pool, cache *db.RedisDB, hub *socket.Hub) *HealthHandler {
	return &HealthHandler{pool: pool, cache: cache, hub: hub}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	if err := h.pool.Ping(ctx); err != nil {
		dbStatus = "down"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "up"
		if err := h.cache.Client.Ping(ctx).Err(); err != nil {
			cacheStatus = "down"
		}
	}

	code := http.StatusOK
	status := "ok"
	if dbStatus == "down" {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": gin.H{
			"database":  dbStatus,
			"cache":     cacheStatus,
			"websocket": gin.H{"connections": h.hub.ConnectionCount()},
		},
	})
}
