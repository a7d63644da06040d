package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hush/overlay"
	"hush/pipeline"
)

// runTestMode drives the overlay from stdin, one command per line:
//
//	SHOW <target>    show-overlay event
//	HIDE             hide-overlay event
//	LEVEL v0 v1 ...  mic-level event with raw amplitudes
//	TEXT <text>      streaming-text event
//	DONE [text]      overlay-done event
//	COPY             manual copy intent
//	CLOSE            close intent
//	SNAPSHOT         print the current snapshot to stdout
//	SLEEP <ms>       pause the script
//	QUIT             exit
//
// Events go through the same bus as the socket, so the whole chain short of
// the wire is exercised. Scripts SLEEP before SNAPSHOT to let the queue drain.
func runTestMode(ev *pipeline.Events, m *overlay.Machine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "SHOW":
			ev.Show(rest)
		case "HIDE":
			ev.Hide()
		case "LEVEL":
			fields := strings.Fields(rest)
			raw := make([]float64, len(fields))
			for i, f := range fields {
				raw[i], _ = strconv.ParseFloat(f, 64)
			}
			ev.MicLevel(raw)
		case "TEXT":
			ev.StreamingText(rest)
		case "DONE":
			ev.Done(rest)
		case "COPY":
			m.CopyText()
		case "CLOSE":
			m.Close()
		case "SNAPSHOT":
			printSnapshot(m.Snapshot())
		case "SLEEP":
			if ms, err := strconv.Atoi(rest); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case "QUIT":
			gracefulShutdown()
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		}
	}
	gracefulShutdown()
}

func printSnapshot(s overlay.Snapshot) {
	levels := make([]string, len(s.Levels))
	for i, v := range s.Levels {
		levels[i] = strconv.FormatFloat(v, 'f', 2, 64)
	}
	fmt.Printf("visible=%t state=%s text=%q copied=%t levels=[%s]\n",
		s.Visible, s.State, s.Text, s.Copied, strings.Join(levels, " "))
}
