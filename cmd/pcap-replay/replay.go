//go:build pcap
// +build pcap

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/robolink/link"
	"github.com/banshee-data/robolink/udp"
)

// replayFile replays UDP payloads from a capture file to the sender,
// preserving the original inter-packet timing scaled by speed. Only packets
// matching "udp port <filterPort>" are replayed.
func replayFile(ctx context.Context, pcapFile string, filterPort int, sender *udp.Sender, speed float64) error {
	if speed <= 0 {
		speed = 1.0
	}

	handle, err := pcap.OpenOffline(pcapFile)
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", pcapFile, err)
	}
	defer handle.Close()

	filterStr := fmt.Sprintf("udp port %d", filterPort)
	if err := handle.SetBPFFilter(filterStr); err != nil {
		return fmt.Errorf("failed to set BPF filter '%s': %w", filterStr, err)
	}
	log.Printf("replay: BPF filter set: %s (speed: %.1fx)", filterStr, speed)

	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	packetCount := 0
	startTime := time.Now()

	var lastPacketTime time.Time

	for {
		select {
		case <-ctx.Done():
			log.Printf("replay stopping: %d packets sent", packetCount)
			return ctx.Err()
		case packet := <-packetSource.Packets():
			if packet == nil {
				elapsed := time.Since(startTime)
				log.Printf("replay complete: %d packets in %v (speed: %.1fx)", packetCount, elapsed, speed)
				return nil
			}

			captureTime := packet.Metadata().Timestamp
			if !lastPacketTime.IsZero() {
				delay := captureTime.Sub(lastPacketTime)
				scaledDelay := time.Duration(float64(delay) / speed)
				if scaledDelay > 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case <-time.After(scaledDelay):
					}
				}
			}
			lastPacketTime = captureTime

			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udpPacket, ok := udpLayer.(*layers.UDP)
			if !ok || len(udpPacket.Payload) == 0 {
				continue
			}

			payload := udpPacket.Payload
			if _, err := sender.Send(payload); err != nil {
				log.Printf("replay: send error on packet %d: %v", packetCount, err)
				continue
			}
			packetCount++

			if packetCount%1000 == 0 {
				elapsed := time.Since(startTime)
				lastSeq := uint32(0)
				if len(payload) >= link.SequenceSize {
					lastSeq = link.Sequence(payload)
				}
				log.Printf("replay progress: %d packets in %v (%.0f pkt/s, last seq %d)",
					packetCount, elapsed, float64(packetCount)/elapsed.Seconds(), lastSeq)
			}
		}
	}
}
