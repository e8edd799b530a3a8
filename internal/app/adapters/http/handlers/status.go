package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/cpu"
)

func (h *Handlers) HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// StatusHandler reports the connection snapshot together with process
// stats, the same numbers the chat ping command used to answer with.
func (h *Handlers) StatusHandler(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	percent, _ := cpu.Percent(0, false)
	if len(percent) == 0 {
		percent = append(percent, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"connection":  h.chat.Status(),
		"uptime":      time.Since(h.startedAt).Truncate(time.Second).String(),
		"cpu_percent": percent[0],
		"mem_sys_mb":  m.Sys / 1024 / 1024,
		"goroutines":  runtime.NumGoroutine(),
	})
}
