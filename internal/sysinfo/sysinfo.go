package sysinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Host describes the machine a render runs on.
type Host struct {
	CPUModel   string
	LogicalCPU int
	ClockGHz   float64
	TotalRAMGB float64
}

// Probe reads the CPU model and total memory. Fields it cannot read keep
// their zero values; the logical CPU count falls back to the Go runtime.
func Probe() (Host, error) {
	h := Host{LogicalCPU: runtime.NumCPU()}

	infos, err := cpu.Info()
	if err != nil {
		return h, fmt.Errorf("sysinfo: cpu: %w", err)
	}
	if len(infos) > 0 {
		h.CPUModel = infos[0].ModelName
		h.ClockGHz = infos[0].Mhz / 1000
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return h, fmt.Errorf("sysinfo: memory: %w", err)
	}
	h.TotalRAMGB = float64(vm.Total) / (1 << 30)
	return h, nil
}

func (h Host) String() string {
	model := h.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s (%d threads, %.2f GHz), %.1f GB RAM", model, h.LogicalCPU, h.ClockGHz, h.TotalRAMGB)
}
