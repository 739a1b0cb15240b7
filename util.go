package main

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"time"
)

var (
	countSuffixes = [...]string{"", "k", "m", "b"}
	byteSuffixes  = [...]string{"", "kb", "mb", "gb"}
)

// tiered divides v by 1000 until it drops below 1000 or the last suffix is
// reached. Values too large for the last tier stay in it.
func tiered(v uint64, suffixes [4]string) string {
	tier := 0
	for v >= 1000 && tier < len(suffixes)-1 {
		v /= 1000
		tier++
	}
	return strconv.FormatUint(v, 10) + suffixes[tier]
}

// formatCount returns an item count as a short string such as 999, 12k, 3m or
// 7b. Division truncates.
func formatCount(v uint64) string {
	return tiered(v, countSuffixes)
}

// formatBytes returns a byte count using decimal units: 999, 12kb, 3mb, 7gb.
func formatBytes(v uint64) string {
	return tiered(v, byteSuffixes)
}

// formatPercentage returns value as an integer percentage of total, or "??"
// when total is zero.
func formatPercentage(value, total uint64) string {
	if total == 0 {
		return "??"
	}
	hi, lo := bits.Mul64(value, 100)
	if hi >= total {
		// Quotient does not fit in 64 bits.
		p := new(big.Int).Mul(new(big.Int).SetUint64(value), big.NewInt(100))
		return p.Div(p, new(big.Int).SetUint64(total)).String()
	}
	q, _ := bits.Div64(hi, lo, total)
	return strconv.FormatUint(q, 10)
}

// formatDuration renders seconds as "1d 2h 3m 4s", omitting leading zero
// components. Negative durations are shown as 0s.
func formatDuration(seconds int64) string {
	seconds = max(seconds, 0)
	d := seconds / 86400
	seconds %= 86400
	h := seconds / 3600
	seconds %= 3600
	m := seconds / 60
	seconds %= 60

	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", d, h, m, seconds)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, seconds)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// formatTimestamp renders a unix epoch in UTC.
func formatTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(time.DateTime)
}

// now returns the current unix time in seconds.
func now() int64 {
	return time.Now().Unix()
}
