package dictionary_test

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bastiangx/termserve/pkg/termin"
)

var memTexts = []string{
	"Москва",
	"рег. номер и регистрационного номера",
	"Р.Ф. и РФ, а также россия",
	"ниж. новгород, н. новгород",
	"london and москва",
	"ничего похожего здесь нет",
}

func heapAlloc() uint64 {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func memPerOp(baseline uint64, ops int64) float64 {
	return float64(int64(heapAlloc())-int64(baseline)) / float64(ops)
}

func TestScanMemoryBasic(t *testing.T) {
	d := buildSample(t)
	for _, iterations := range []int{100, 500, 1000} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			baseline := heapAlloc()
			ops := int64(0)
			for i := 0; i < iterations; i++ {
				for _, text := range memTexts {
					_ = d.Scan(text, termin.NoAttrs, 0, 0)
					ops++
				}
			}
			perOp := memPerOp(baseline, ops)
			t.Logf("iterations=%d ops=%d mem_per_op=%.2f", iterations, ops, perOp)
			if perOp > 1000 {
				t.Errorf("excessive retained memory per operation: %.2f bytes", perOp)
			}
		})
	}
}

func TestScanMemoryConcurrent(t *testing.T) {
	d := buildSample(t)
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 400},
		{workers: 4, iterationsPerWorker: 100},
		{workers: 8, iterationsPerWorker: 50},
	}
	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			baseline := heapAlloc()
			var ops atomic.Int64
			var wg sync.WaitGroup
			for w := 0; w < config.workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < config.iterationsPerWorker; i++ {
						for _, text := range memTexts {
							_ = d.Scan(text, termin.NoAttrs, 0, 0)
							_ = d.Collection.Suggest(text, 5, 0.9)
							ops.Add(1)
						}
					}
				}()
			}
			wg.Wait()
			perOp := memPerOp(baseline, ops.Load())
			t.Logf("workers=%d total_ops=%d mem_per_op=%.2f", config.workers, ops.Load(), perOp)
			if perOp > 1000 {
				t.Errorf("excessive retained memory per operation: %.2f bytes", perOp)
			}
		})
	}
}

func TestScanMemoryLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}
	d := buildSample(t)
	baseline := heapAlloc()
	ops := int64(0)
	for cycle := 0; cycle < 50; cycle++ {
		for op := 0; op < 200; op++ {
			_ = d.Scan(memTexts[op%len(memTexts)], termin.NoAttrs, 0.6, 0)
			ops++
		}
		if cycle%10 == 0 {
			t.Logf("cycle=%d ops=%d mem_per_op=%.2f", cycle, ops, memPerOp(baseline, ops))
		}
	}
	if perOp := memPerOp(baseline, ops); perOp > 1000 {
		t.Errorf("excessive retained memory per operation: %.2f bytes", perOp)
	}
}
