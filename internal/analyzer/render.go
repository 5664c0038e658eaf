package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
)

// bucketTitles maps buckets to their human-readable report rows.
var bucketTitles = map[Bucket]string{
	BucketUpdating:            "Update in progress",
	BucketOffline:             "Offline",
	BucketUpToDate:            "Up to date",
	BucketInsufficientBattery: "Insufficient battery",
	BucketEligible:            "Eligible for update",
}

// Render formats the report as a terminal table for operators running the
// analyzer interactively.
func Render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fleet update eligibility at %s\n\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	summary := uitable.New()
	summary.AddRow("BUCKET", "VEHICLES", "SHARE")
	for _, bucket := range Buckets {
		count := r.Counts[bucket]
		share := 0.0
		if r.Total > 0 {
			share = float64(count) / float64(r.Total) * 100
		}
		summary.AddRow(bucketTitles[bucket], count, fmt.Sprintf("%.1f%%", share))
	}
	summary.AddRow("Total", r.Total, "")
	b.WriteString(summary.String())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Update eligibility rate: %.1f%%\n", r.EligibilityRate)

	if len(r.CriticalEligible) > 0 {
		fmt.Fprintf(&b, "\nCritical firmware, eligible now (%d):\n", len(r.CriticalEligible))
		crit := uitable.New()
		crit.AddRow("VEHICLE", "VIN", "FIRMWARE", "BATTERY")
		for _, v := range r.CriticalEligible {
			crit.AddRow(v.Key, v.VIN, v.FirmwareVersion, fmt.Sprintf("%.0f%%", v.BatteryPercent))
		}
		b.WriteString(crit.String())
		b.WriteString("\n")
	}

	if len(r.FirmwareHistogram) > 0 {
		b.WriteString("\nFirmware distribution:\n")
		fw := uitable.New()
		fw.AddRow("VERSION", "VEHICLES")
		for _, s := range firmwareRows(r) {
			fw.AddRow(s.version, s.count)
		}
		b.WriteString(fw.String())
		b.WriteString("\n")
	}

	return b.String()
}

type firmwareRow struct {
	version string
	count   int
}

func firmwareRows(r *Report) []firmwareRow {
	rows := make([]firmwareRow, 0, len(r.FirmwareHistogram))
	for v, n := range r.FirmwareHistogram {
		rows = append(rows, firmwareRow{version: v, count: n})
	}
	// Highest adoption first; ties break on version for stable output.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].version < rows[j].version
	})
	return rows
}
