//go:build !pcap
// +build !pcap

package main

import (
	"context"
	"fmt"

	"github.com/banshee-data/robolink/udp"
)

// replayFile is a stub when PCAP support is disabled.
// Build with -tags=pcap to enable capture replay.
func replayFile(ctx context.Context, pcapFile string, filterPort int, sender *udp.Sender, speed float64) error {
	return fmt.Errorf("PCAP support not enabled: rebuild with -tags=pcap to enable capture replay")
}
