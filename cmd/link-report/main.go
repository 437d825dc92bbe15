// Command link-report summarises a recorded link session and optionally
// renders it as an HTML page of interactive charts or a PNG poll-time plot.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/robolink/db"
	"github.com/banshee-data/robolink/internal/version"
	"github.com/banshee-data/robolink/report"
)

var (
	dbPath    = flag.String("db", "robolink.db", "Path to the sqlite sample database")
	sessionID = flag.String("session", "", "Session to report on (default: most recent)")
	htmlPath  = flag.String("html", "", "Write an HTML chart page to this path")
	pngPath   = flag.String("png", "", "Write a PNG poll-time plot to this path")
	list      = flag.Bool("list", false, "List recorded sessions and exit")
)

func main() {
	flag.Parse()
	log.Print(version.String())

	linkDB, err := db.OpenLinkDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database %s: %v", *dbPath, err)
	}
	defer linkDB.Close()

	sessions, err := linkDB.Sessions()
	if err != nil {
		log.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		log.Fatalf("no recorded sessions in %s", *dbPath)
	}

	if *list {
		for _, s := range sessions {
			fmt.Printf("%s  %s  %gHz  %s\n",
				s.SessionID, s.StartedAt.Format("2006-01-02 15:04:05"), s.TargetRateHz, s.LocalAddr)
		}
		return
	}

	info := sessions[0]
	if *sessionID != "" {
		found := false
		for _, s := range sessions {
			if s.SessionID == *sessionID {
				info = s
				found = true
				break
			}
		}
		if !found {
			log.Fatalf("session %s not found in %s", *sessionID, *dbPath)
		}
	}

	summary, err := linkDB.Summarise(info.SessionID)
	if err != nil {
		log.Fatalf("failed to summarise session: %v", err)
	}

	fmt.Printf("session:   %s\n", info.SessionID)
	fmt.Printf("link:      %s at %g Hz, started %s\n",
		info.LocalAddr, info.TargetRateHz, info.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("samples:   %d (%d captured, %d timeouts)\n",
		summary.Samples, summary.Captured, summary.Timeouts)
	if summary.Captured > 0 {
		fmt.Printf("sequences: %d..%d, %d missed\n", summary.FirstSeq, summary.LastSeq, summary.Missed)
		fmt.Printf("poll time: mean %.0fµs, stddev %.0fµs, p95 %.0fµs\n",
			summary.PollMeanMicros, summary.PollStdDevMicros, summary.PollP95Micros)
	}

	if *htmlPath == "" && *pngPath == "" {
		return
	}

	samples, err := linkDB.Samples(info.SessionID)
	if err != nil {
		log.Fatalf("failed to load samples: %v", err)
	}

	if *htmlPath != "" {
		f, err := os.Create(*htmlPath)
		if err != nil {
			log.Fatalf("failed to create %s: %v", *htmlPath, err)
		}
		if err := report.WriteHTML(f, info, summary, samples); err != nil {
			f.Close()
			log.Fatalf("failed to render HTML report: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("failed to write %s: %v", *htmlPath, err)
		}
		log.Printf("wrote HTML report to %s", *htmlPath)
	}

	if *pngPath != "" {
		if err := report.SavePNG(*pngPath, samples); err != nil {
			log.Fatalf("failed to render PNG plot: %v", err)
		}
		log.Printf("wrote poll-time plot to %s", *pngPath)
	}
}
