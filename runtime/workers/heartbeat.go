package workers

import (
	"context"
	"log/slog"
	"os"
	"time"
	"wish-wall/contract"
	"wish-wall/observability"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples the server process and the viewer registry at a fixed interval.
type HeartbeatWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, registry contract.IRegistry, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, registry: registry, interval: interval}
}

// Run publishes RSS, CPU and viewer counts as gauges until ctx is done.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	queueViewers := w.registry.Count(contract.QueueFeed)
	wallViewers := w.registry.Count(contract.WallFeed)
	observability.ActiveViewers.WithLabelValues(string(contract.QueueFeed)).Set(float64(queueViewers))
	observability.ActiveViewers.WithLabelValues(string(contract.WallFeed)).Set(float64(wallViewers))

	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "error", err)
		return
	}
	observability.ProcessRSSBytes.Set(float64(rss))
	observability.ProcessCPUPercent.Set(cpu)

	w.log.Debug("Heartbeat",
		"rss_mb", rss/1024/1024,
		"cpu_percent", cpu,
		"queue_viewers", queueViewers,
		"wall_viewers", wallViewers,
	)
}

// selfStats retrieves resident memory and CPU usage of the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
