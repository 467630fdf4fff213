package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/memlayout/pkg/stabilizer"
)

// =============================================================================
// Palette
// =============================================================================

// Colors are ANSI-256 and named after what they mark in replay output.
var (
	colorAccent = lipgloss.Color("36")  // selection, relayouts
	colorFresh  = lipgloss.Color("35")  // rebuilt graphs
	colorFrozen = lipgloss.Color("220") // frozen graphs, warnings
	colorFault  = lipgloss.Color("167") // analysis errors, clears
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleAccent = lipgloss.NewStyle().Foreground(colorAccent)
	styleFaint  = lipgloss.NewStyle().Foreground(colorFaint)
	styleText   = lipgloss.NewStyle().Foreground(colorText)
	styleFrozen = lipgloss.NewStyle().Foreground(colorFrozen)
	styleKey    = lipgloss.NewStyle().Foreground(colorMuted).Width(12)

	styleIconError   = lipgloss.NewStyle().Foreground(colorFault)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorFrozen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorMuted)
)

const (
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Lines
// =============================================================================

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning), styleFrozen.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo), fmt.Sprintf(format, args...))
}

// printDetail prints a faint line indented under the previous one.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleFaint.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written export.
func printFile(path string) {
	printLine("  "+styleFaint.Render(iconArrow), styleText.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleKey.Render(key), styleText.Render(value))
}

func printLine(prefix, msg string) {
	fmt.Println(prefix + " " + msg)
}

// printStats prints the graph size and the decision that produced it.
func printStats(nodeCount, edgeCount int, decision stabilizer.Decision) {
	fmt.Println(statsLine(nodeCount, edgeCount, decision))
}

func statsLine(nodeCount, edgeCount int, decision stabilizer.Decision) string {
	sep := styleFaint.Render(" · ")
	return "  " + styleFaint.Render(fmt.Sprintf("%d nodes", nodeCount)) +
		sep + styleFaint.Render(fmt.Sprintf("%d edges", edgeCount)) +
		sep + renderDecision(decision)
}
