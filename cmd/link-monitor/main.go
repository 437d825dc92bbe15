// Command link-monitor binds a UDP port and reports live traffic statistics
// for a control link: packet and byte rates plus the last sequence number
// seen. With -listen it also serves the counters as JSON over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/banshee-data/robolink/internal/version"
	"github.com/banshee-data/robolink/link"
	"github.com/banshee-data/robolink/udp"
)

var (
	bindAddr   = flag.String("addr", "0.0.0.0", "Address to bind")
	bindPort   = flag.Int("port", 59200, "UDP port to monitor")
	listenAddr = flag.String("listen", "", "Serve live counters as JSON on this HTTP address (e.g. :8080)")
)

type counters struct {
	packets   atomic.Int64
	bytes     atomic.Int64
	malformed atomic.Int64
	lastSeq   atomic.Uint32
	totalPkts atomic.Int64
}

func (c *counters) snapshot() map[string]interface{} {
	return map[string]interface{}{
		"total_packets": c.totalPkts.Load(),
		"malformed":     c.malformed.Load(),
		"last_sequence": c.lastSeq.Load(),
	}
}

func main() {
	flag.Parse()
	log.Print(version.String())

	recv, err := udp.NewReceiver(*bindAddr, *bindPort)
	if err != nil {
		log.Fatalf("failed to bind %s:%d: %v", *bindAddr, *bindPort, err)
	}
	defer recv.Close()

	log.Printf("monitoring UDP %s", recv.LocalAddr())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var c counters

	if *listenAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(c.snapshot()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		})
		srv := &http.Server{Addr: *listenAddr, Handler: mux}
		go func() {
			log.Printf("serving stats on http://%s/api/stats", *listenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// Per-second rate reporting
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				packets := c.packets.Swap(0)
				bytes := c.bytes.Swap(0)
				if packets > 0 {
					fmt.Printf("%d packets/sec, %.1f KB/sec, last seq %d\n",
						packets, float64(bytes)/1024, c.lastSeq.Load())
				}
			}
		}
	}()

	buf := make([]byte, 65536)
	for ctx.Err() == nil {
		n, err := recv.Receive(buf)
		switch {
		case errors.Is(err, udp.ErrWouldBlock):
			time.Sleep(100 * time.Microsecond)
		case err != nil:
			log.Printf("receive error: %v", err)
		case n < link.SequenceSize:
			c.malformed.Add(1)
		default:
			c.packets.Add(1)
			c.totalPkts.Add(1)
			c.bytes.Add(int64(n))
			c.lastSeq.Store(link.Sequence(buf))
		}
	}

	log.Printf("shutting down: %d packets observed", c.totalPkts.Load())
}
