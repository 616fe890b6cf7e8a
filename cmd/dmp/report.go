package main

import (
	"fmt"
	"strings"

	"github.com/datamtools/dmp"
)

const (
	progName    = "dmp"
	progTitle   = "File Hex/ASCII Dump Utility"
	progVersion = "v0.21"
)

func versionLine() string {
	return fmt.Sprintf("%s   %s   %s", progName, progTitle, progVersion)
}

// ss picks the plural suffix, because English.
func ss(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// blurbText is the two-line no-arguments clue, with the second line
// justified under the title.
func blurbText() string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "   %s   %s   %s\n", progName, progTitle, progVersion)
	fmt.Fprintf(&b, "   %s(use '%s --help' for help)\n", strings.Repeat(" ", len(progName)+3), progName)
	b.WriteString("\n")
	return b.String()
}

func aboutText() string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s   %s   %s\n", progName, progTitle, progVersion)
	b.WriteString("Developed to gain quick and consistent insight into binary files.\n")
	b.WriteString("\n")
	return b.String()
}

// headerLine frames the top of one dump.
func headerLine(display string, pipe bool) string {
	if pipe {
		return "    Dump of Pipe: (stdin)\n"
	}
	return fmt.Sprintf("    Dump of File: %s\n", display)
}

// footerLine reports End-of-File against End-of-Dump, which is how a
// truncated run is told apart from an exhausted stream.
func footerLine(sum dmp.Summary, limit int64) string {
	if sum.Truncated {
		return fmt.Sprintf("    End-of-Dump   (%d byte%s)\n", sum.Bytes, ss(sum.Bytes))
	}
	if limit > 0 {
		return fmt.Sprintf("    End-of-File   (%d byte%s)  (EoF before %d-byte limit)\n",
			sum.Bytes, ss(sum.Bytes), limit)
	}
	return fmt.Sprintf("    End-of-File   (%d byte%s)\n", sum.Bytes, ss(sum.Bytes))
}

// dumpedLine reports where a to-file run landed, on the console.
func dumpedLine(sum dmp.Summary, outName string, appended bool) string {
	suffix := ""
	if appended {
		suffix = " (appended)"
	}
	return fmt.Sprintf("    Dumped output (%d byte%s) to file: %s%s\n",
		sum.Bytes, ss(sum.Bytes), outName, suffix)
}
