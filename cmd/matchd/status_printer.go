// status_printer.go - Colored CLI status output for the matching engine daemon
package main

import (
	"fmt"

	"github.com/fatih/color"

	"matchcore/internal/matching/types"
)

// statusColor returns the fatih/color printer matching a HealthStatus,
// the same three-way enum health.go already reports system health with.
func statusColor(status HealthStatus) *color.Color {
	switch status {
	case Healthy:
		return color.New(color.FgGreen, color.Bold)
	case Degraded:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// PrintHealth renders a SystemHealth snapshot to stdout with per-component
// colored status markers.
func PrintHealth(health *SystemHealth) {
	statusColor(health.OverallStatus).Printf("[%s] ", health.OverallStatus)
	fmt.Printf("matchd v%s, uptime %s\n", health.Version, health.Uptime.Round(1))
	for _, c := range health.Components {
		statusColor(c.Status).Printf("  %-20s %-10s", c.Name, c.Status)
		fmt.Printf(" %s\n", c.Message)
	}
}

// PrintRoundSummary renders one completed matching round: per-student
// assignment (or "unmatched" in red) and per-college occupancy.
func PrintRoundSummary(roundID string, matches types.StudentMatches, colleges types.CollegeMatches) {
	bold := color.New(color.Bold)
	bold.Printf("=== round %s ===\n", roundID)

	matched := 0
	for s, c := range matches {
		if c == types.Unmatched {
			color.New(color.FgRed).Printf("  student %-3d -> unmatched\n", s)
			continue
		}
		matched++
		color.New(color.FgGreen).Printf("  student %-3d -> college %d\n", s, c)
	}

	for c, seats := range colleges {
		filled := 0
		for _, s := range seats {
			if s != types.Unmatched {
				filled++
			}
		}
		col := color.New(color.FgCyan)
		if filled == len(seats) {
			col = color.New(color.FgYellow)
		}
		col.Printf("  college %-3d: %d/%d seats filled\n", c, filled, len(seats))
	}

	bold.Printf("%d/%d students matched\n", matched, types.NumStudents)
}

// PrintProofStatus reports whether a Groth16 proof verified for a round.
func PrintProofStatus(roundID string, verified bool) {
	if verified {
		color.New(color.FgGreen, color.Bold).Printf("[%s] proof verified\n", roundID)
		return
	}
	color.New(color.FgRed, color.Bold).Printf("[%s] proof verification FAILED\n", roundID)
}
