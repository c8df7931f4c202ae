// Command bench drives the B+-tree index through a bulk load and the
// scenario scan table from the original tester, once per storage backend,
// and writes a CSV plus a latency chart comparing them.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/tokenbucket"
	"github.com/getsentry/sentry-go"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/dbtrees/bptreeidx/btreeindex"
	"github.com/dbtrees/bptreeidx/bufmgr"
	"github.com/dbtrees/bptreeidx/pagedfile"
	"github.com/dbtrees/bptreeidx/pagedfile/pebblefile"
	"github.com/dbtrees/bptreeidx/relation"
)

const poolSize = 256

type scenario struct {
	name string
	lo   int32
	loOp btreeindex.Operator
	hi   int32
	hiOp btreeindex.Operator
}

var scenarios = []scenario{
	{"(0,1)", 0, btreeindex.GT, 1, btreeindex.LT},
	{"(300,400)", 300, btreeindex.GT, 400, btreeindex.LT},
	{"[3000,4000)", 3000, btreeindex.GTE, 4000, btreeindex.LT},
	{"[-100,0]", -100, btreeindex.GTE, 0, btreeindex.LTE},
	{"[25000,26000)", 25000, btreeindex.GTE, 26000, btreeindex.LT},
	{"[159000,160000)", 159000, btreeindex.GTE, 160000, btreeindex.LT},
}

func main() {
	if dsn := os.Getenv("BENCH_SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Printf("sentry.Init: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
		defer func() {
			if r := recover(); r != nil {
				sentry.CurrentHub().Recover(r)
				sentry.Flush(2 * time.Second)
				panic(r)
			}
		}()
	}

	const relationSize = 300000
	outDir := "results"
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("MkdirAll: %v", err)
	}

	f, err := os.Create(filepath.Join(outDir, "bench.csv"))
	if err != nil {
		log.Fatalf("create csv: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	w.Write([]string{"Backend", "Scenario", "Operation", "LatencyNs", "AllocMB", "HeapObjects"})

	insertLatencies := make(map[string]float64)

	for _, backend := range []string{"osfile", "pebble"} {
		dir, err := os.MkdirTemp("", "btreebench-"+backend)
		if err != nil {
			log.Fatalf("MkdirTemp: %v", err)
		}
		defer os.RemoveAll(dir)

		rel, err := relation.Create(filepath.Join(dir, "rel"))
		if err != nil {
			log.Fatalf("relation.Create: %v", err)
		}
		for i := int32(0); i < relationSize; i++ {
			var rec relation.Record
			rec.I = i
			rec.D = float64(i)
			if _, err := rel.Insert(rec); err != nil {
				log.Fatalf("rel.Insert: %v", err)
			}
		}

		bm, err := openBackend(backend, filepath.Join(dir, "idx"))
		if err != nil {
			log.Fatalf("openBackend(%s): %v", backend, err)
		}

		ix, err := btreeindex.Construct(bm, true, "rel", relation.OffsetI, btreeindex.Integer)
		if err != nil {
			log.Fatalf("Construct: %v", err)
		}

		limiter := &tokenbucket.TokenBucket{}
		limiter.Init(tokenbucket.TokensPerSecond(50000), 1000)

		sc := relation.NewScanner(rel)
		keyOf := func(buf []byte) btreeindex.Key { return relation.Decode(buf).I }

		start := time.Now()
		if err := ix.BulkLoad(context.Background(), sc, keyOf, limiter); err != nil {
			log.Fatalf("BulkLoad: %v", err)
		}
		loadLatency := time.Since(start).Nanoseconds() / int64(relationSize)
		insertLatencies[backend] = float64(loadLatency)

		mem := sampleMem()
		recordRow(w, Result{backend, "bulk_load", "Insert", loadLatency, mem.AllocMB, mem.HeapObjects})

		for _, sc := range scenarios {
			start = time.Now()
			count := runScan(ix, sc)
			elapsed := time.Since(start).Nanoseconds()
			mem = sampleMem()
			recordRow(w, Result{backend, sc.name, fmt.Sprintf("Scan(%d matches)", count), elapsed, mem.AllocMB, mem.HeapObjects})
		}

		if backend == "osfile" {
			if err := ix.RenderPNG(filepath.Join(outDir, "tree.dot"), filepath.Join(outDir, "tree.png")); err != nil {
				log.Printf("RenderPNG (non-fatal, requires graphviz): %v", err)
			}
		}

		if err := ix.Destruct(); err != nil {
			log.Fatalf("Destruct: %v", err)
		}
		if err := rel.Close(); err != nil {
			log.Fatalf("rel.Close: %v", err)
		}
	}

	if err := plotInsertLatency(filepath.Join(outDir, "insert_latency.png"), insertLatencies); err != nil {
		log.Printf("plotInsertLatency: %v", err)
	}

	fmt.Println("wrote", filepath.Join(outDir, "bench.csv"))
}

func openBackend(name, path string) (*bufmgr.BufMgr, error) {
	switch name {
	case "osfile":
		pf, err := pagedfile.Create(path)
		if err != nil {
			return nil, err
		}
		return bufmgr.New(pf, poolSize), nil
	case "pebble":
		pf, err := pebblefile.Open(path)
		if err != nil {
			return nil, err
		}
		return bufmgr.New(pf, poolSize), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runScan(ix *btreeindex.Index, s scenario) int {
	if err := ix.StartScan(s.lo, s.loOp, s.hi, s.hiOp); err != nil {
		if err == btreeindex.ErrNoSuchKeyFound {
			return 0
		}
		log.Fatalf("StartScan(%s): %v", s.name, err)
	}
	count := 0
	for {
		if _, err := ix.ScanNext(); err != nil {
			if err == btreeindex.ErrIndexScanCompleted {
				break
			}
			log.Fatalf("ScanNext(%s): %v", s.name, err)
		}
		count++
	}
	if err := ix.EndScan(); err != nil {
		log.Fatalf("EndScan(%s): %v", s.name, err)
	}
	return count
}

func plotInsertLatency(path string, byBackend map[string]float64) error {
	p := plot.New()
	p.Title.Text = "Bulk load latency per insert"
	p.Y.Label.Text = "ns/insert"

	names := []string{"osfile", "pebble"}
	values := make(plotter.Values, 0, len(names))
	for _, n := range names {
		values = append(values, byBackend[n])
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names...)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
