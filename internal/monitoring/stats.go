package monitoring

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a point-in-time view of the server process and its host.
type ProcessStats struct {
	PID            int32   `json:"pid"`
	RSSBytes       uint64  `json:"rssBytes"`
	CPUPercent     float64 `json:"cpuPercent"`
	Goroutines     int     `json:"goroutines"`
	HostMemUsedPct float64 `json:"hostMemoryUsedPercent"`
}

// StatsProvider reports resource usage.
type StatsProvider interface {
	ProcessStats() (ProcessStats, error)
}

// SystemStats reads resource usage of the current process through gopsutil.
type SystemStats struct {
	proc *process.Process
}

// NewSystemStats attaches to the running process.
func NewSystemStats() (*SystemStats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &SystemStats{proc: p}, nil
}

// ProcessStats samples memory and CPU usage. CPU is averaged over the process lifetime.
func (s *SystemStats) ProcessStats() (ProcessStats, error) {
	stats := ProcessStats{
		PID:        s.proc.Pid,
		Goroutines: runtime.NumGoroutine(),
	}

	memInfo, err := s.proc.MemoryInfo()
	if err != nil {
		return stats, err
	}
	stats.RSSBytes = memInfo.RSS

	cpu, err := s.proc.CPUPercent()
	if err != nil {
		return stats, err
	}
	stats.CPUPercent = cpu

	// Host memory is informational; a failure here doesn't invalidate the sample.
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemUsedPct = vm.UsedPercent
	}
	return stats, nil
}
