package api

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"groupchat/services"
)

// MonitorController 监控控制器
type MonitorController struct {
	DB           *gorm.DB
	EventService *services.EventService
}

// NewMonitorController 创建监控控制器
func NewMonitorController(db *gorm.DB, eventService *services.EventService) *MonitorController {
	return &MonitorController{
		DB:           db,
		EventService: eventService,
	}
}

// GetSystemStatus 获取系统状态
func (c *MonitorController) GetSystemStatus(ctx *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := gin.H{
		"goroutines": runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc":       m.Alloc / 1024 / 1024,      // MB
			"total_alloc": m.TotalAlloc / 1024 / 1024, // MB
			"sys":         m.Sys / 1024 / 1024,        // MB
			"num_gc":      m.NumGC,
		},
	}

	// 数据库连接池状态
	if sqlDB, err := c.DB.DB(); err == nil {
		stats := sqlDB.Stats()
		status["database"] = gin.H{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		}
	}

	// 事件发布指标
	if c.EventService != nil {
		status["events"] = c.EventService.GetMetrics()
	}

	ctx.JSON(http.StatusOK, status)
}
