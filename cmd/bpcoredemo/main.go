// Command bpcoredemo wires an extendible hash table and an LRU-K replacer
// together the way a buffer pool manager would: the table maps synthetic
// page ids to frame ids, the replacer decides which frame to reuse when every
// frame is in use and a new page needs one. It never touches disk — the
// buffer pool manager itself is out of scope for this module.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/LVerrrr/bpcore/internal/metrics"
	"github.com/LVerrrr/bpcore/internal/replacer"
	"github.com/LVerrrr/bpcore/internal/xhash"
	"github.com/LVerrrr/bpcore/internal/xhash/hashing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or failed to load, relying on system env vars")
	} else {
		log.Println("Loaded environment variables from .env")
	}

	var (
		numFramesEnv  = getEnv("BPCORE_NUM_FRAMES", "16")
		kEnv          = getEnv("BPCORE_K", "2")
		bucketSizeEnv = getEnv("BPCORE_BUCKET_SIZE", "4")
		numPagesEnv   = getEnv("BPCORE_NUM_PAGES", "256")
		opsEnv        = getEnv("BPCORE_OPS", "2000")
		reportSecEnv  = getEnv("BPCORE_REPORT_SEC", "2")

		numFramesFlag  = flag.Int("frames", atoiDefault(numFramesEnv, 16), "replacer frame count")
		kFlag          = flag.Int("k", atoiDefault(kEnv, 2), "LRU-K history depth")
		bucketSizeFlag = flag.Int("bucketSize", atoiDefault(bucketSizeEnv, 4), "hash table bucket capacity")
		numPagesFlag   = flag.Int("pages", atoiDefault(numPagesEnv, 256), "distinct synthetic page ids")
		opsFlag        = flag.Int("ops", atoiDefault(opsEnv, 2000), "synthetic page accesses to simulate")
		reportSecFlag  = flag.Int("report", atoiDefault(reportSecEnv, 2), "stats report interval in seconds")
	)
	flag.Parse()

	log.Printf("bpcoredemo starting: frames=%d k=%d bucketSize=%d pages=%d ops=%d",
		*numFramesFlag, *kFlag, *bucketSizeFlag, *numPagesFlag, *opsFlag)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pageTable := xhash.New[int32, int](*bucketSizeFlag, hashing.Int32Hasher())
	repl := replacer.New(*numFramesFlag, *kFlag)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go runWorkload(ctx, pageTable, repl, *numPagesFlag, *numFramesFlag, *opsFlag, done)

	ticker := time.NewTicker(time.Duration(*reportSecFlag) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			log.Println("Shutting down...")
			cancel()
			<-done
			log.Println("Bye!")
			return
		case <-done:
			log.Println("Workload complete.")
			reportStats(pageTable, repl)
			return
		case <-ticker.C:
			reportStats(pageTable, repl)
		}
	}
}

// runWorkload simulates a buffer pool fetching pages: on a page-table miss
// it takes a never-used frame while any remain and otherwise asks the
// replacer for a victim frame, pins the
// new mapping, then immediately marks the frame evictable again, the way a
// caller would once it unpins the page.
func runWorkload(ctx context.Context, pageTable *xhash.HashTable[int32, int], repl *replacer.LRUKReplacer, numPages, numFrames, ops int, done chan struct{}) {
	defer close(done)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nextFrame := 0
	prevBuckets := pageTable.GetNumBuckets()

	for i := 0; i < ops; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pageID := int32(rng.Intn(numPages))

		if frameID, ok := pageTable.Find(pageID); ok {
			if err := repl.RecordAccess(frameID); err != nil {
				log.Printf("record access on page %d frame %d: %v", pageID, frameID, err)
			}
			continue
		}

		var frameID int
		if nextFrame < numFrames {
			frameID = nextFrame
			nextFrame++
		} else {
			victim, ok := repl.Evict()
			if !ok {
				continue
			}
			frameID = victim
		}

		pageTable.Insert(pageID, frameID)

		if err := repl.RecordAccess(frameID); err != nil {
			log.Printf("record access on page %d frame %d: %v", pageID, frameID, err)
			continue
		}
		if err := repl.SetEvictable(frameID, true); err != nil {
			log.Printf("set evictable on frame %d: %v", frameID, err)
		}

		if buckets := pageTable.GetNumBuckets(); buckets > prevBuckets {
			metrics.IncHashTableSplit("page_table")
			prevBuckets = buckets
		}
	}
}

func reportStats(pageTable *xhash.HashTable[int32, int], repl *replacer.LRUKReplacer) {
	ts := pageTable.Stats()
	rs := repl.Stats()

	metrics.ObserveHashTable("page_table", metrics.HashTableStats{
		GlobalDepth: ts.GlobalDepth,
		NumBuckets:  ts.NumBuckets,
		KeyCount:    ts.KeyCount,
	})
	metrics.ObserveReplacer("page_table", metrics.ReplacerStats{
		CurrSize:         rs.CurrSize,
		CurrentTimestamp: rs.CurrentTimestamp,
	})

	log.Printf("stats: %s %s", pageTable, repl)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func atoiDefault(s string, defaultValue int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultValue
}
