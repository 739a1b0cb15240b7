//go:build linux

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// processStart approximates the start of the process for CPU averaging.
var processStart = time.Now()

const statmPath = "/proc/self/statm"

// sampleSelf samples the current process through getrusage(2), sysinfo(2)
// and the resident page count in /proc/self/statm. Memory is the current
// resident set size, as ps reports it.
func sampleSelf(ctx context.Context) (resourceSample, error) {
	if err := ctx.Err(); err != nil {
		return resourceSample{}, err
	}

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return resourceSample{}, fmt.Errorf("getrusage: %w", err)
	}
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return resourceSample{}, fmt.Errorf("sysinfo: %w", err)
	}

	totalRAM := uint64(si.Totalram) * uint64(si.Unit)
	if totalRAM == 0 {
		return resourceSample{}, errors.New("sysinfo reported no memory")
	}
	statm, err := os.ReadFile(statmPath)
	if err != nil {
		return resourceSample{}, err
	}
	pages, err := parseStatmResident(statm)
	if err != nil {
		return resourceSample{}, err
	}
	rss := pages * uint64(unix.Getpagesize())

	cpu := time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
	elapsed := max(time.Since(processStart), time.Millisecond)

	return resourceSample{
		PID:    os.Getpid(),
		MemPct: int(rss * 100 / totalRAM),
		CPUPct: int(cpu * 100 / elapsed),
	}, nil
}

// parseStatmResident returns the resident page count, the second field of
// /proc/<pid>/statm.
func parseStatmResident(statm []byte) (uint64, error) {
	fields := bytes.Fields(statm)
	if len(fields) < 2 {
		return 0, &sampleError{Reason: "short statm", Output: escapeBytes(statm)}
	}
	pages, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0, &sampleError{Reason: "bad statm resident column", Output: escapeBytes(statm)}
	}
	return pages, nil
}
