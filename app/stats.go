package app

import (
	"fmt"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/shirou/gopsutil/v3/process"
)

// StatsOverlay shows process memory and CPU usage in a corner readout,
// refreshed once a second.
type StatsOverlay struct {
	visible     bool
	proc        *process.Process
	lastRefresh time.Time
	memMB       float64
	cpuPercent  float64
}

// NewStatsOverlay creates a hidden stats overlay for the current process.
func NewStatsOverlay() *StatsOverlay {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		proc = nil
	}
	return &StatsOverlay{proc: proc}
}

// Toggle flips overlay visibility.
func (so *StatsOverlay) Toggle() {
	so.visible = !so.visible
}

// Update refreshes the readings while visible.
func (so *StatsOverlay) Update() {
	if !so.visible || so.proc == nil {
		return
	}
	if time.Since(so.lastRefresh) < time.Second {
		return
	}
	so.lastRefresh = time.Now()

	if mem, err := so.proc.MemoryInfo(); err == nil && mem != nil {
		so.memMB = float64(mem.RSS) / (1024 * 1024)
	}
	if cpu, err := so.proc.CPUPercent(); err == nil {
		so.cpuPercent = cpu
	}
}

// Draw renders the readout in the top-right corner.
func (so *StatsOverlay) Draw(screen *ebiten.Image, screenW int) {
	if !so.visible {
		return
	}
	readout := fmt.Sprintf("mem %.1f MB  cpu %.1f%%  fps %.0f", so.memMB, so.cpuPercent, ebiten.ActualFPS())
	drawText(screen, readout, screenW-textWidth(readout)-10, 8, textWhite)
}
