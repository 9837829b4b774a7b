// Command bench runs a synthetic row workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/embcache/embcache/cache"
	"github.com/embcache/embcache/internal/util"
	pmet "github.com/embcache/embcache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		sizeBytes = flag.Int64("size", 64<<20, "total cache capacity in bytes")
		shards    = flag.Int("shards", util.ReasonableShardCount(), "number of shards")
		rowDim    = flag.Int("dim", 128, "elements per row")
		elemBytes = flag.Int("elem", 4, "bytes per element (1, 2, 4 or 8)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		capture = flag.Int("capture", 0, "arm eviction capture for this many slots (0 = unarmed; must upper-bound evictions or the run aborts)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "embcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache ----
	itemSize := *rowDim * *elemBytes
	c := cache.New(cache.Options{
		NumShards:      *shards,
		CacheSizeBytes: *sizeBytes,
		MaxRowDim:      *rowDim,
		ItemSizeBytes:  itemSize,
		Logger:         logger,
		Metrics:        metrics,
	})
	defer func() { _ = c.Close() }()

	if *capture > 0 {
		c.ArmEvictionCapture(*capture)
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	rowsFit := int(*sizeBytes) / itemSize
	row := make([]byte, itemSize)
	for i := 0; i < rowsFit/2 && i < *keys; i++ {
		binary.LittleEndian.PutUint64(row, uint64(i))
		c.Put(int64(i), row)
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, hits, misses, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)
			localRow := make([]byte, itemSize)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				k := int64(localZipf.Uint64())
				if int(localR.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					if _, ok := c.Get(k); ok {
						atomic.AddUint64(&hits, 1)
					} else {
						atomic.AddUint64(&misses, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					binary.LittleEndian.PutUint64(localRow, uint64(k))
					c.Put(k, localRow)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	writesN := atomic.LoadUint64(&writes)
	hitsN := atomic.LoadUint64(&hits)
	missesN := atomic.LoadUint64(&misses)

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("size=%d shards=%d dim=%d elem=%d workers=%d keys=%d dur=%v seed=%d\n",
		*sizeBytes, *shards, *rowDim, *elemBytes, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, missesN, hitRate)

	stats := c.Stats()
	free, capacity := c.Usage()
	fmt.Printf("resident=%d used=%dB free=%dB of %dB evictions=%d\n",
		stats.Items, stats.UsedBytes, free, capacity, stats.Evictions)
	if *capture > 0 {
		if _, _, n, ok := c.ReadEvicted(); ok {
			fmt.Printf("captured=%d of %d armed slots\n", n, *capture)
		}
	}
}
