// mvu E2E Load Benchmark
//
// Measures p50/p95/p99 roundtrip latency and GC work under concurrent load.
//
// It runs the real server with the counter demo and drives N concurrent
// WebSocket clients. Each client clicks "+" and waits for the SetText op that
// carries its next count:
// client send → server decode → update → view → diff → op encode → WS write → client read/decode
//
// Run:
//
//	cd benchmark/e2e_load
//	go run . -clients=200 -duration=30s -rps=5
//	go run . -transport=inline-serialization -codec=cbor
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/mvu/internal/demo"
	"github.com/vango-dev/mvu/internal/logging"
	"github.com/vango-dev/mvu/pkg/document"
	"github.com/vango-dev/mvu/pkg/protocol"
	mvuruntime "github.com/vango-dev/mvu/pkg/runtime"
	"github.com/vango-dev/mvu/pkg/server"
	"github.com/vango-dev/mvu/pkg/transport"
)

// Node ids of the counter view.
const (
	incrementID = "r.0"
	countID     = "r.2"
)

func main() {
	var (
		clients   = flag.Int("clients", 100, "number of concurrent websocket clients")
		duration  = flag.Duration("duration", 15*time.Second, "how long to run the load test")
		rps       = flag.Float64("rps", 2, "target events/sec per client (best-effort, response-gated)")
		modeName  = flag.String("transport", string(transport.ModeIDIndirection), "handler transport mode")
		codecName = flag.String("codec", "json", "inline codec (json or cbor)")
	)
	flag.Parse()

	if *clients <= 0 {
		log.Fatal("-clients must be > 0")
	}
	if *duration <= 0 {
		log.Fatal("-duration must be > 0")
	}
	if *rps <= 0 {
		log.Fatal("-rps must be > 0")
	}

	app, err := demo.Lookup("counter")
	if err != nil {
		log.Fatal(err)
	}
	mode, err := transport.ParseMode(*modeName)
	if err != nil {
		log.Fatal(err)
	}
	codec, err := transport.NewCodec(*codecName, app.Types)
	if err != nil {
		log.Fatal(err)
	}
	binder, err := transport.NewBinder(mode, codec)
	if err != nil {
		log.Fatal(err)
	}

	// Reduce incidental variability a bit.
	debug.SetGCPercent(100)

	srv := server.New(app.New, &server.Config{
		CheckOrigin:    func(r *http.Request) bool { return true },
		RuntimeOptions: []mvuruntime.Option{mvuruntime.WithBinder(binder)},
		Logger:         logging.NewNop(),
	})

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	httpServer := &http.Server{Handler: srv.Handler()}
	go func() {
		_ = httpServer.Serve(ln)
	}()
	defer func() {
		_ = srv.Shutdown(context.Background())
		_ = httpServer.Shutdown(context.Background())
	}()

	wsURL := "ws://" + ln.Addr().String() + server.SocketPath

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	samplesCh := make(chan time.Duration, 1024)
	var samples []time.Duration
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for rtt := range samplesCh {
			samples = append(samples, rtt)
		}
	}()

	var (
		totalEvents atomic.Uint64
		totalErrors atomic.Uint64
	)

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()

	var wg sync.WaitGroup
	wg.Add(*clients)
	for i := 0; i < *clients; i++ {
		go func() {
			defer wg.Done()
			if err := runClient(ctx, wsURL, *rps, samplesCh, &totalEvents); err != nil {
				totalErrors.Add(1)
			}
		}()
	}

	wg.Wait()
	close(samplesCh)
	<-collectorDone

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	latencies := samples
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	total := totalEvents.Load()
	errs := totalErrors.Load()
	runSeconds := math.Max(0.001, (*duration).Seconds())

	fmt.Println("=== mvu E2E Load Benchmark ===")
	fmt.Printf("Clients: %d\n", *clients)
	fmt.Printf("Duration: %s\n", (*duration).String())
	fmt.Printf("Target per-client rate: %.2f events/s\n", *rps)
	fmt.Printf("Transport: %s (%s)\n", mode, codec.Name())
	fmt.Printf("Total events: %d\n", total)
	fmt.Printf("Errors: %d\n", errs)
	fmt.Printf("Throughput: %.1f events/s\n", float64(total)/runSeconds)
	fmt.Println()

	if len(latencies) == 0 {
		fmt.Println("No latency samples recorded.")
	} else {
		fmt.Println("RTT (client send → server → client receive+decode):")
		fmt.Printf("  min: %s\n", latencies[0])
		fmt.Printf("  p50: %s\n", percentile(latencies, 0.50))
		fmt.Printf("  p95: %s\n", percentile(latencies, 0.95))
		fmt.Printf("  p99: %s\n", percentile(latencies, 0.99))
		fmt.Printf("  max: %s\n", latencies[len(latencies)-1])
	}
	fmt.Println()

	fmt.Println("Go runtime / GC (process-wide):")
	fmt.Printf("  alloc:     %.2f MB\n", float64(after.TotalAlloc-before.TotalAlloc)/(1024*1024))
	fmt.Printf("  heap_live: %.2f MB\n", float64(after.HeapAlloc)/(1024*1024))
	fmt.Printf("  num_gc:    %d\n", after.NumGC-before.NumGC)
	fmt.Printf("  gc_pause:  %s (total)\n", time.Duration(after.PauseTotalNs-before.PauseTotalNs))
	fmt.Printf("  gc_pause:  %s (avg)\n", avgPause(after, before))
	fmt.Printf("  gc_cpu:    %.2f%%\n", 100*cpuFraction(afterMetrics, beforeMetrics))
	fmt.Printf("  allocs:    %.2f M objects\n", float64(afterMetrics.heapAllocsObjects-beforeMetrics.heapAllocsObjects)/1_000_000)
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds   float64
	cpuGCSeconds      float64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	return runtimeMetricsSnapshot{
		cpuTotalSeconds:   samples[0].Value.Float64(),
		cpuGCSeconds:      samples[1].Value.Float64(),
		heapAllocsObjects: samples[2].Value.Uint64(),
	}
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

func runClient(
	ctx context.Context,
	wsURL string,
	rps float64,
	samples chan<- time.Duration,
	totalEvents *atomic.Uint64,
) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// The mount frame carries the whole first paint.
	op, err := readOp(conn)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	doc, err := document.Parse(op.Value)
	if err != nil {
		return fmt.Errorf("mount markup: %w", err)
	}
	handler, ok := doc.Handler(incrementID, "click")
	if !ok {
		return fmt.Errorf("mount: no click handler on %s", incrementID)
	}

	period := time.Duration(float64(time.Second) / rps)
	var seq uint64

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		seq++
		start := time.Now()

		evFrame := protocol.NewFrame(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Seq: seq, ID: handler}))
		if err := conn.WriteMessage(websocket.BinaryMessage, evFrame.Encode()); err != nil {
			return fmt.Errorf("event write: %w", err)
		}

		// Each click increments by one, so the count equals seq.
		if err := waitForCount(ctx, conn, strconv.FormatUint(seq, 10)); err != nil {
			return fmt.Errorf("wait for count: %w", err)
		}

		rtt := time.Since(start)
		totalEvents.Add(1)
		samples <- rtt

		// Best-effort pacing, gated on the response to measure real queueing.
		if sleep := period - time.Since(start); sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

func readOp(conn *websocket.Conn) (protocol.Op, error) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return protocol.Op{}, err
		}
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			return protocol.Op{}, err
		}
		switch frame.Type {
		case protocol.FrameOp:
			return protocol.DecodeOp(frame.Payload)
		case protocol.FrameError:
			em, err := protocol.DecodeErrorMessage(frame.Payload)
			if err != nil {
				return protocol.Op{}, err
			}
			return protocol.Op{}, em
		}
	}
}

func waitForCount(ctx context.Context, conn *websocket.Conn, want string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		op, err := readOp(conn)
		if err != nil {
			return err
		}
		if op.Kind == protocol.OpSetText && op.NodeID == countID && op.Value == want {
			return nil
		}
	}
}
