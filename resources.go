package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"unicode/utf8"
)

// resourceSample is a one-shot snapshot of the memory and CPU usage of the
// current process. CPU is averaged over the process lifetime, so it is only a
// rough indication.
type resourceSample struct {
	PID    int `json:"pid"`
	MemPct int `json:"mem_pct"`
	CPUPct int `json:"cpu_pct"`
}

func (s resourceSample) String() string {
	return fmt.Sprintf("pid %d: mem %d%%, cpu %d%%", s.PID, s.MemPct, s.CPUPct)
}

// sampleError is returned when the output of the process listing cannot be
// used.
type sampleError struct {
	Reason string
	Output string
}

func (e *sampleError) Error() string {
	return fmt.Sprintf("unable to parse process listing (%s): %q", e.Reason, e.Output)
}

// sampleSelfPS samples the current process by running ps.
func sampleSelfPS(ctx context.Context) (resourceSample, error) {
	pid := os.Getpid()
	cmd := exec.CommandContext(ctx, "ps", "-o", "pid=,%mem=,%cpu=", "-p", strconv.Itoa(pid))
	out, err := cmd.Output()
	if err != nil {
		return resourceSample{}, fmt.Errorf("unable to run ps: %w", err)
	}
	return parsePSOutput(pid, out)
}

// parsePSOutput extracts the sample for pid from rows of "pid mem cpu".
func parsePSOutput(pid int, out []byte) (resourceSample, error) {
	if !utf8.Valid(out) {
		return resourceSample{}, &sampleError{Reason: "invalid utf-8", Output: escapeBytes(out)}
	}

	want := strconv.Itoa(pid)
	for _, line := range bytes.Split(out, []byte("\n")) {
		fields := bytes.Fields(line)
		if len(fields) == 0 || string(fields[0]) != want {
			continue
		}
		if len(fields) != 3 {
			return resourceSample{}, &sampleError{Reason: "expected 3 columns", Output: string(line)}
		}
		mem, err := strconv.ParseFloat(string(fields[1]), 64)
		if err != nil {
			return resourceSample{}, &sampleError{Reason: "bad memory column", Output: string(line)}
		}
		cpu, err := strconv.ParseFloat(string(fields[2]), 64)
		if err != nil {
			return resourceSample{}, &sampleError{Reason: "bad cpu column", Output: string(line)}
		}
		return resourceSample{PID: pid, MemPct: int(mem), CPUPct: int(cpu)}, nil
	}

	return resourceSample{}, &sampleError{Reason: "pid " + want + " not found", Output: string(out)}
}
