package system

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

// Snapshot is one reading of machine load. Percentages; a negative
// value means that field could not be read.
type Snapshot struct {
	CPU    float64
	Memory float64
	Disk   float64
}

// Sampler reads CPU, memory, and disk usage from the kernel. CPU load
// is a delta between consecutive calls, so the first Snapshot after
// construction reports CPU as unknown; the daemon's metrics ticker
// keeps the sampler warm.
type Sampler struct {
	mu sync.Mutex

	statPath    string
	meminfoPath string
	diskPath    string

	prevIdle  uint64
	prevTotal uint64
}

func NewSampler() *Sampler {
	return &Sampler{
		statPath:    "/proc/stat",
		meminfoPath: "/proc/meminfo",
		diskPath:    "/",
	}
}

// Snapshot returns the current reading. It errs only when every field
// is unreadable.
func (s *Sampler) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{CPU: -1, Memory: -1, Disk: -1}

	if data, err := os.ReadFile(s.statPath); err == nil {
		if idle, total, ok := parseCPUStat(string(data)); ok {
			if s.prevTotal > 0 && total > s.prevTotal {
				dIdle := float64(idle - s.prevIdle)
				dTotal := float64(total - s.prevTotal)
				snap.CPU = 100 * (1 - dIdle/dTotal)
			}
			s.prevIdle, s.prevTotal = idle, total
		}
	}

	if data, err := os.ReadFile(s.meminfoPath); err == nil {
		snap.Memory = memPercent(string(data))
	}

	var st syscall.Statfs_t
	if err := syscall.Statfs(s.diskPath, &st); err == nil {
		used := float64(st.Blocks - st.Bfree)
		total := used + float64(st.Bavail)
		if total > 0 {
			snap.Disk = 100 * used / total
		}
	}

	if snap.CPU < 0 && snap.Memory < 0 && snap.Disk < 0 {
		return snap, errors.New("no metrics readable")
	}

	return snap, nil
}

// parseCPUStat reads the aggregate "cpu" line of /proc/stat and
// returns idle (idle+iowait) and total jiffies.
func parseCPUStat(data string) (idle, total uint64, ok bool) {
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}

		var vals []uint64
		for _, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return 0, 0, false
			}
			vals = append(vals, v)
		}

		for _, v := range vals {
			total += v
		}

		// fields: user nice system idle iowait ...
		idle = vals[3]
		if len(vals) > 4 {
			idle += vals[4]
		}

		return idle, total, true
	}

	return 0, 0, false
}

func memPercent(data string) float64 {
	var total, avail float64

	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		switch fields[0] {
		case "MemTotal:":
			total = v
		case "MemAvailable:":
			avail = v
		}
	}

	if total <= 0 || avail < 0 {
		return -1
	}

	return 100 * (1 - avail/total)
}
