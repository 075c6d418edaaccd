package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jjsantos01/cineteca-schedule-grid/tui"
)

const appName = "cineteca-schedule-grid"

var (
	version = "dev"
	commit  = "none"
)

func printUsage(out *os.File) {
	fmt.Fprintf(out, "Usage: %s [--share QUERY] [--version]\n\n", appName)
	fmt.Fprintln(out, "  --share QUERY   restore a shared filter string (date, sedes, filters)")
	fmt.Fprintln(out, "\nEnvironment:")
	fmt.Fprintln(out, "  CINETECA_SEDES  comma-separated sede ids to show (001,002,003)")
	fmt.Fprintln(out, "  CINETECA_DATE   start date as YYYY-MM-DD, within the browsable week")
	fmt.Fprintln(out, "  CINETECA_DEBUG  set to 1 to log parser failures to stderr")
}

func printVersion() {
	fmt.Printf("%s %s", appName, version)
	if commit != "none" && commit != "" {
		fmt.Printf(" (%s)", commit)
	}
	fmt.Println()
}

// handleArgs returns the share string to restore and whether to launch.
func handleArgs(args []string) (string, bool) {
	share := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help", "help":
			printUsage(os.Stdout)
			return "", false
		case "-v", "--version", "version":
			printVersion()
			return "", false
		case "--share":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--share requires a value")
				printUsage(os.Stderr)
				os.Exit(2)
			}
			i++
			share = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Unknown argument: %s\n", args[i])
			printUsage(os.Stderr)
			os.Exit(2)
		}
	}
	return share, true
}

func main() {
	share, run := handleArgs(os.Args[1:])
	if !run {
		return
	}

	if _, err := tea.NewProgram(tui.NewWithShare(share), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
