package controllers

import (
	"backend/models"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

type SystemStatsResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type SystemStats struct {
	TotalSerials  int64 `json:"total_serials"`
	TotalUsers    int64 `json:"total_users"`
	TotalVotes    int64 `json:"total_votes"`
	TotalComments int64 `json:"total_comments"`
}

type SystemStatus struct {
	CPUUsage      float64        `json:"cpuUsage"`
	MemoryTotal   uint64         `json:"memoryTotal"`
	MemoryUsed    uint64         `json:"memoryUsed"`
	MemoryUsage   float64        `json:"memoryUsage"`
	DiskTotal     uint64         `json:"diskTotal"`
	DiskUsed      uint64         `json:"diskUsed"`
	DiskUsage     float64        `json:"diskUsage"`
	NetworkStatus NetworkMetrics `json:"networkStatus"`
	Uptime        float64        `json:"uptime"`
}

type NetworkMetrics struct {
	RxBytes     uint64 `json:"rxBytes"`
	TxBytes     uint64 `json:"txBytes"`
	Connections int    `json:"connections"`
}

// GetSystemStats 获取系统统计信息
// @Summary 获取系统统计信息
// @Description 获取系统中剧集、用户、评分和评论的总数统计
// @Tags 系统管理
// @Produce json
// @Security Bearer
// @Success 200 {object} SystemStatsResponse
// @Router /admin/stats [get]
func GetSystemStats(c *gin.Context) {
	var stats SystemStats

	models.DB.Model(&models.Serial{}).Count(&stats.TotalSerials)
	models.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	models.DB.Model(&models.SerialVote{}).Count(&stats.TotalVotes)
	models.DB.Model(&models.Comment{}).Count(&stats.TotalComments)

	c.JSON(http.StatusOK, SystemStatsResponse{
		Code:    http.StatusOK,
		Message: "获取系统统计信息成功",
		Data:    stats,
	})
}

// GetSystemStatus 获取系统状态信息
// @Summary 获取系统状态信息
// @Description 获取系统CPU、内存、磁盘和网络等实时状态信息
// @Tags 系统管理
// @Produce json
// @Security Bearer
// @Success 200 {object} SystemStatsResponse
// @Router /admin/system/status [get]
func GetSystemStatus(c *gin.Context) {
	status := SystemStatus{}

	// 获取系统运行时间
	if uptime, err := host.Uptime(); err == nil {
		status.Uptime = float64(uptime)
	}

	// 获取CPU使用率
	cpuPercent, err := cpu.Percent(time.Second, false)
	if err == nil && len(cpuPercent) > 0 {
		status.CPUUsage = cpuPercent[0]
	}

	// 获取内存信息
	if memInfo, err := mem.VirtualMemory(); err == nil {
		status.MemoryTotal = memInfo.Total
		status.MemoryUsed = memInfo.Used
		status.MemoryUsage = memInfo.UsedPercent
	}

	// 获取磁盘信息
	if diskInfo, err := disk.Usage("/"); err == nil {
		status.DiskTotal = diskInfo.Total
		status.DiskUsed = diskInfo.Used
		status.DiskUsage = diskInfo.UsedPercent
	}

	// 获取网络信息
	networkMetrics := NetworkMetrics{}
	if netStats, err := net.IOCounters(false); err == nil && len(netStats) > 0 {
		networkMetrics.RxBytes = netStats[0].BytesRecv
		networkMetrics.TxBytes = netStats[0].BytesSent
	}

	if connections, err := net.Connections("all"); err == nil {
		networkMetrics.Connections = len(connections)
	}

	status.NetworkStatus = networkMetrics

	c.JSON(http.StatusOK, SystemStatsResponse{
		Code:    http.StatusOK,
		Message: "获取系统状态信息成功",
		Data:    status,
	})
}
