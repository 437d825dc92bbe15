// Command pcap-replay replays recorded UDP control-link traffic from a
// capture file to a live destination, preserving the original packet timing.
// Useful for reproducing field conditions against a receiver on the bench.
//
// PCAP support requires building with -tags=pcap (needs libpcap headers).
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/robolink/internal/version"
	"github.com/banshee-data/robolink/udp"
)

var (
	pcapFile   = flag.String("file", "", "Capture file to replay (required)")
	filterPort = flag.Int("filter-port", 59200, "Only replay UDP packets captured on this port")
	destAddr   = flag.String("dest-addr", "127.0.0.1", "Destination address")
	destPort   = flag.Int("dest-port", 59200, "Destination port")
	speed      = flag.Float64("speed", 1.0, "Replay speed multiplier (1.0 = real-time)")
)

func main() {
	flag.Parse()
	log.Print(version.String())

	if *pcapFile == "" {
		log.Fatal("-file is required")
	}

	sender, err := udp.NewSender(*destAddr, *destPort)
	if err != nil {
		log.Fatalf("failed to create sender: %v", err)
	}
	defer sender.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := replayFile(ctx, *pcapFile, *filterPort, sender, *speed); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("replay failed: %v", err)
	}
}
