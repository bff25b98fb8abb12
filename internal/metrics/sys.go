package metrics

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// SysHealth represents real-time process metrics.
type SysHealth struct {
	AllocMB      uint64        `json:"alloc_mb"`
	TotalAllocMB uint64        `json:"total_alloc_mb"`
	SysMB        uint64        `json:"sys_mb"`
	NumGC        uint32        `json:"num_gc"`
	Goroutines   int           `json:"goroutines"`
	Uptime       time.Duration `json:"uptime"`
	DataDiskSize string        `json:"data_disk_size"`
}

// Snapshot collects process health and the size of the data directory.
func Snapshot(dataDir string, started time.Time) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DataDiskSize: humanize.IBytes(dirSize(dataDir)),
	}
	if !started.IsZero() {
		h.Uptime = time.Since(started).Round(time.Second)
	}
	return h
}

func dirSize(path string) uint64 {
	var size uint64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}
		return nil
	})
	return size
}
