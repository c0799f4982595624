// Package printer renders analyzer.Result values and full AnalyzeScript
// runs into the human-readable report format a reader reviewing a script's
// spending conditions reads off a terminal.
package printer

import (
	"strconv"
	"strings"

	"github.com/wangxinyu2018/scriptanalyzer/analyzer"
)

// Result renders one spending path: its required input stack size, the
// simplified conditions that stack must satisfy, and any locktime/sequence
// floor.
func Result(r *analyzer.Result) string {
	var stackItems string
	if len(r.SpendingConditions) > 0 {
		lines := make([]string, len(r.SpendingConditions))
		for i, c := range r.SpendingConditions {
			lines[i] = c.String()
		}
		stackItems = "\n" + strings.Join(lines, "\n")
	} else {
		stackItems = " none"
	}

	locktimeStr, hasLocktime := r.LocktimeReq.String(false)
	sequenceStr, hasSequence := r.SequenceReq.String(true)

	if !hasLocktime {
		locktimeStr = "none"
	}

	switch {
	case hasSequence:
		// sequenceStr already set
	case hasLocktime:
		sequenceStr = "non-final (not 0xffffffff)"
	default:
		sequenceStr = "none"
	}

	var sb strings.Builder
	sb.WriteString("Stack size: ")
	sb.WriteString(strconv.FormatUint(uint64(r.StackSize), 10))
	sb.WriteString("\nStack item requirements:")
	sb.WriteString(stackItems)
	sb.WriteString("\nLocktime requirement: ")
	sb.WriteString(locktimeStr)
	sb.WriteString("\nSequence requirement: ")
	sb.WriteString(sequenceStr)
	return sb.String()
}

// Report renders every surviving spending path produced by
// analyzer.AnalyzeScript, in the "Spending paths:\n\n..." format readers of
// the CLI's analyze subcommand see.
func Report(results []*analyzer.Result) string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = Result(r)
	}
	return "Spending paths:\n\n" + strings.Join(paths, "\n\n")
}
