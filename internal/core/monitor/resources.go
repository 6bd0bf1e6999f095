package monitor

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// ResourceStats represents system resource statistics
type ResourceStats struct {
	CPU       CPUStats     `json:"cpu"`
	Memory    MemoryStats  `json:"memory"`
	Disk      DiskStats    `json:"disk"`
	Host      HostStats    `json:"host"`
	Runtime   RuntimeStats `json:"runtime"`
	Timestamp time.Time    `json:"timestamp"`
}

// CPUStats represents CPU statistics
type CPUStats struct {
	Cores        int     `json:"cores"`
	TotalPercent float64 `json:"total_percent"`
}

// MemoryStats represents memory statistics
type MemoryStats struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// DiskStats describes the filesystem holding the database
type DiskStats struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// HostStats represents host system statistics
type HostStats struct {
	Hostname        string    `json:"hostname"`
	OS              string    `json:"os"`
	Platform        string    `json:"platform"`
	PlatformVersion string    `json:"platform_version"`
	KernelVersion   string    `json:"kernel_version"`
	Uptime          uint64    `json:"uptime"`
	BootTime        time.Time `json:"boot_time"`
}

// RuntimeStats represents Go runtime statistics
type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	MemAllocBytes uint64 `json:"mem_alloc_bytes"`
	MemSysBytes   uint64 `json:"mem_sys_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

// ResourceMonitor samples host and process resources
type ResourceMonitor struct {
	logger   *logrus.Logger
	diskPath string
}

// NewResourceMonitor creates a new resource monitor. diskPath selects the
// filesystem reported under Disk, normally the database directory.
func NewResourceMonitor(diskPath string, logger *logrus.Logger) *ResourceMonitor {
	if diskPath == "" {
		diskPath = "."
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &ResourceMonitor{
		logger:   logger,
		diskPath: diskPath,
	}
}

// GetResourceStats collects current system resource statistics. Sources that
// fail are logged and left zero.
func (r *ResourceMonitor) GetResourceStats(ctx context.Context) (*ResourceStats, error) {
	stats := &ResourceStats{
		Timestamp: time.Now(),
	}

	if cpuStats, err := r.getCPUStats(ctx); err != nil {
		r.logger.WithError(err).Warn("Failed to get CPU stats")
	} else {
		stats.CPU = *cpuStats
	}

	if memStats, err := r.getMemoryStats(ctx); err != nil {
		r.logger.WithError(err).Warn("Failed to get memory stats")
	} else {
		stats.Memory = *memStats
	}

	if diskStats, err := r.getDiskStats(ctx); err != nil {
		r.logger.WithError(err).WithField("path", r.diskPath).Warn("Failed to get disk stats")
	} else {
		stats.Disk = *diskStats
	}

	if hostStats, err := r.getHostStats(ctx); err != nil {
		r.logger.WithError(err).Warn("Failed to get host stats")
	} else {
		stats.Host = *hostStats
	}

	stats.Runtime = *r.getRuntimeStats()

	return stats, nil
}

// getCPUStats reports usage since the previous call; the first call returns 0
func (r *ResourceMonitor) getCPUStats(ctx context.Context) (*CPUStats, error) {
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count CPUs: %w", err)
	}

	totalCPU, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get total CPU usage: %w", err)
	}

	totalPercent := 0.0
	if len(totalCPU) > 0 {
		totalPercent = totalCPU[0]
	}

	return &CPUStats{
		Cores:        cores,
		TotalPercent: totalPercent,
	}, nil
}

func (r *ResourceMonitor) getMemoryStats(ctx context.Context) (*MemoryStats, error) {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get virtual memory stats: %w", err)
	}

	return &MemoryStats{
		Total:       vmem.Total,
		Available:   vmem.Available,
		Used:        vmem.Used,
		UsedPercent: vmem.UsedPercent,
	}, nil
}

func (r *ResourceMonitor) getDiskStats(ctx context.Context) (*DiskStats, error) {
	usage, err := disk.UsageWithContext(ctx, r.diskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}

	return &DiskStats{
		Path:        r.diskPath,
		Total:       usage.Total,
		Free:        usage.Free,
		Used:        usage.Used,
		UsedPercent: usage.UsedPercent,
	}, nil
}

func (r *ResourceMonitor) getHostStats(ctx context.Context) (*HostStats, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	return &HostStats{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Uptime:          info.Uptime,
		BootTime:        time.Unix(int64(info.BootTime), 0),
	}, nil
}

func (r *ResourceMonitor) getRuntimeStats() *RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		MemAllocBytes: m.Alloc,
		MemSysBytes:   m.Sys,
		GCCycles:      m.NumGC,
	}
}
