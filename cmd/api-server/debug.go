package main

import (
	"context"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/process"
)

type procStats struct {
	PID        int32   `json:"pid"`
	RSS        uint64  `json:"rss_bytes"`
	RSSHuman   string  `json:"rss"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	HeapAlloc  string  `json:"heap_alloc"`
	Error      string  `json:"error,omitempty"`
}

func processStats(ctx context.Context) procStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	out := procStats{
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  humanize.Bytes(ms.HeapAlloc),
	}

	p, err := process.NewProcessWithContext(ctx, out.PID)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
		out.RSS = mem.RSS
		out.RSSHuman = humanize.Bytes(mem.RSS)
	} else {
		out.Error = err.Error()
	}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		out.CPUPercent = cpu
	}
	return out
}
