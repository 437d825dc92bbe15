// Command robolink runs a duplex control-link demo: it sends packets of
// random float32 values at the target rate and polls for the freshest
// inbound packet each cycle, printing what arrived. Point two instances at
// each other (or one at itself with matching ports) to exercise a link.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/robolink/db"
	"github.com/banshee-data/robolink/internal/version"
	"github.com/banshee-data/robolink/link"
	"github.com/banshee-data/robolink/udp"
)

var (
	localAddr  = flag.String("local-addr", "127.0.0.1", "Local address to bind")
	localPort  = flag.Int("local-port", 59200, "Local port to bind")
	remoteAddr = flag.String("remote-addr", "127.0.0.1", "Remote address to send to")
	remotePort = flag.Int("remote-port", 59200, "Remote port to send to")
	rate       = flag.Float64("rate", 200, "Target control rate in Hz")
	numFloats  = flag.Int("floats", 2, "Number of float32 values per packet")
	recordPath = flag.String("record", "", "Record link samples to this sqlite database")
	statsEvery = flag.Duration("stats-interval", 10*time.Second, "Interval between link stats log lines")
)

func main() {
	flag.Parse()
	log.Print(version.String())

	if *rate <= 0 {
		log.Fatal("rate must be positive")
	}
	if *numFloats < 1 {
		log.Fatal("need at least one float per packet")
	}

	sender, err := udp.NewSender(*remoteAddr, *remotePort)
	if err != nil {
		log.Fatalf("failed to create sender: %v", err)
	}
	defer sender.Close()

	recv, err := udp.NewReceiver(*localAddr, *localPort)
	if err != nil {
		log.Fatalf("failed to create receiver: %v", err)
	}
	defer recv.Close()

	stats := link.NewLinkStats()
	poller := link.NewPoller(link.PollerConfig{
		Receiver: recv,
		Stats:    stats,
	})

	// Optional sample recorder
	var linkDB *db.LinkDB
	var sessionID string
	if *recordPath != "" {
		linkDB, err = db.NewLinkDB(*recordPath)
		if err != nil {
			log.Fatalf("failed to open record database: %v", err)
		}
		defer linkDB.Close()

		sessionID, err = linkDB.StartSession(recv.LocalAddr().String(), *rate)
		if err != nil {
			log.Fatalf("failed to start record session: %v", err)
		}
		log.Printf("recording link samples to %s (session %s)", *recordPath, sessionID)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// periodic stats logging
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(*statsEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats.LogStats()
			}
		}
	}()

	size := link.PacketSize(*numFloats)
	sendBuf := make([]byte, size)
	recvBuf := make([]byte, size)
	sendVals := make([]float32, *numFloats)
	var seq uint32

	interval := time.Duration(float64(time.Second) / *rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("control link %s:%d <-> %s:%d at %g Hz, %d-byte packets",
		*localAddr, *localPort, *remoteAddr, *remotePort, *rate, size)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}

		// Send this cycle's packet
		seq++
		for i := range sendVals {
			sendVals[i] = rand.Float32()
		}
		link.SetSequence(sendBuf, seq)
		if err := link.PutFloats(sendBuf, sendVals); err != nil {
			log.Fatalf("failed to pack floats: %v", err)
		}
		if _, err := sender.Send(sendBuf); err != nil {
			log.Printf("send error: %v", err)
		}

		// Poll for the freshest inbound packet
		pollStart := time.Now()
		pollErr := poller.Poll(recvBuf, *rate)
		pollTime := time.Since(pollStart)

		switch {
		case pollErr == nil:
			vals, err := link.Floats(recvBuf)
			if err != nil {
				log.Printf("unpack error: %v", err)
				continue
			}
			log.Printf("seq=%d floats=%v poll=%v", link.Sequence(recvBuf), vals, pollTime)
			if linkDB != nil {
				if err := linkDB.RecordSample(sessionID, link.Sequence(recvBuf), size, pollTime, false); err != nil {
					log.Printf("failed to record sample: %v", err)
				}
			}
		case errors.Is(pollErr, link.ErrTimeout):
			log.Printf("poll timeout after %v", pollTime)
			if linkDB != nil {
				if err := linkDB.RecordSample(sessionID, 0, 0, pollTime, true); err != nil {
					log.Printf("failed to record sample: %v", err)
				}
			}
		default:
			log.Fatalf("poll failed: %v", pollErr)
		}
	}

	stop()
	wg.Wait()
	stats.LogStats()
	log.Print("shutdown complete")
}
