package diag

import (
	"fmt"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

// Display renders every collected diagnostic followed by a closing
// summary line.
func Display(s *Sink) {
	for _, d := range s.Diagnostics() {
		displayOne(d)
	}
	displaySummary(s.ErrorCount(), s.WarningCount())
}

func displayOne(d Diagnostic) {
	tag := d.Severity.String()
	if d.Stage != "" {
		tag = d.Stage + " " + tag
	}
	switch d.Severity {
	case SeverityError:
		ErrorStyleBG.Print(tag)
		ErrorColorFG.Print(" " + d.Message)
	case SeverityWarning:
		WarnStyleBG.Print(tag)
		WarnColorFG.Print(" " + d.Message)
	default:
		InfoStyleBG.Print(tag)
		InfoColorFG.Print(" " + d.Message)
	}
	if d.Symbol != "" {
		fmt.Printf("  [%s]", d.Symbol)
	}
	fmt.Println()
}

func displaySummary(errorCount, warningCount int) {
	fmt.Println()
	if errorCount == 0 {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Failed. ")
	}

	fmt.Print("(")
	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		if warningCount == 0 {
			SuccessColorFG.Print(0)
		} else {
			WarnColorFG.Print(warningCount)
		}
		fmt.Println(" warnings)")
	}
}
