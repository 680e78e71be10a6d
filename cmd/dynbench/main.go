package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/reverie-systems/reverb/reactive"
)

// dynbench stresses dependency re-tracking: a fraction of the memos in
// each layer pick their sources based on a selector signal, so every
// selector flip rewires part of the graph and older edges must be
// forgotten. Each workload runs twice with the same seed and the final
// layer checksums must agree, catching nondeterministic propagation.

type benchConfig struct {
	name            string
	width           int
	totalLayers     int
	nSources        int
	dynamicFraction float64
	iterations      int
}

var benchConfigs = []benchConfig{
	{
		name:            "simple component",
		width:           10,
		totalLayers:     5,
		nSources:        2,
		dynamicFraction: 0,
		iterations:      60_000,
	},
	{
		name:            "dynamic component",
		width:           10,
		totalLayers:     10,
		nSources:        6,
		dynamicFraction: 0.25,
		iterations:      15_000,
	},
	{
		name:            "wide dense",
		width:           1000,
		totalLayers:     5,
		nSources:        25,
		dynamicFraction: 0.05,
		iterations:      300,
	},
	{
		name:            "deep",
		width:           5,
		totalLayers:     500,
		nSources:        3,
		dynamicFraction: 0,
		iterations:      500,
	},
	{
		name:            "very dynamic",
		width:           100,
		totalLayers:     15,
		nSources:        6,
		dynamicFraction: 0.5,
		iterations:      2_000,
	},
}

func main() {
	seed := flag.Int64("seed", 42, "seed for graph construction")
	flag.Parse()

	log.Print("Starting reverb dynamic-graph benchmark, please wait...")
	defer log.Print("Finished reverb dynamic-graph benchmark")

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{
		"test", "size", "nSources", "dynamic%",
		"nTimes", "updates", "time", "updateRate", "checksum",
	})

	for _, cfg := range benchConfigs {
		log.Printf("Running '%s' config", cfg.name)

		first := runWorkload(cfg, *seed)
		second := runWorkload(cfg, *seed)
		if first.checksum != second.checksum {
			log.Fatalf("%s: nondeterministic propagation: %x vs %x",
				cfg.name, first.checksum, second.checksum)
		}

		rate := float64(first.effectRuns) / first.duration.Seconds()
		tbl.Append([]string{
			cfg.name,
			fmt.Sprintf("%dx%d", cfg.width, cfg.totalLayers),
			fmt.Sprintf("%d", cfg.nSources),
			fmt.Sprintf("%.0f%%", cfg.dynamicFraction*100),
			humanize.Comma(int64(cfg.iterations)),
			humanize.Comma(first.effectRuns),
			first.duration.Round(time.Millisecond).String(),
			humanize.Comma(int64(rate)) + "/s",
			fmt.Sprintf("%016x", first.checksum),
		})
	}

	tbl.Render()
}

type workloadResult struct {
	effectRuns int64
	duration   time.Duration
	checksum   uint64
}

func runWorkload(cfg benchConfig, seed int64) workloadResult {
	rng := rand.New(rand.NewSource(seed))
	rt := reactive.NewRuntime(reactive.OnError(func(err error) {
		log.Panic(err)
	}))

	sources := make([]*reactive.Signal[int], cfg.width)
	layer := make([]func() int, cfg.width)
	for i := range sources {
		sources[i] = reactive.NewSignal(rt, i)
		layer[i] = sources[i].Get
	}
	selector := reactive.NewSignal(rt, 0)

	for l := 1; l < cfg.totalLayers; l++ {
		prev := layer
		next := make([]func() int, cfg.width)
		for i := 0; i < cfg.width; i++ {
			picksA := pickSources(rng, prev, cfg.nSources)
			if rng.Float64() < cfg.dynamicFraction {
				// Dynamic memo: the selector decides which source set
				// is read, so half the edges churn on every flip.
				picksB := pickSources(rng, prev, cfg.nSources)
				next[i] = reactive.NewMemo(rt, func() (int, error) {
					picks := picksA
					if selector.Get()%2 == 1 {
						picks = picksB
					}
					return sumSources(picks), nil
				}).Get
			} else {
				next[i] = reactive.NewMemo(rt, func() (int, error) {
					return sumSources(picksA), nil
				}).Get
			}
		}
		layer = next
	}

	var effectRuns int64
	last := layer
	reactive.NewEffect(rt, func() error {
		for _, read := range last {
			read()
		}
		effectRuns++
		return nil
	})

	start := time.Now()
	for i := 0; i < cfg.iterations; i++ {
		if cfg.dynamicFraction > 0 && i%10 == 9 {
			selector.Update(func(v int) int { return v + 1 })
			continue
		}
		sources[i%cfg.width].Set(i)
	}
	duration := time.Since(start)

	digest := xxhash.New()
	for _, read := range last {
		fmt.Fprintf(digest, "%d,", read())
	}

	return workloadResult{
		effectRuns: effectRuns,
		duration:   duration,
		checksum:   digest.Sum64(),
	}
}

func pickSources(rng *rand.Rand, prev []func() int, n int) []func() int {
	picks := make([]func() int, n)
	for i := range picks {
		picks[i] = prev[rng.Intn(len(prev))]
	}
	return picks
}

func sumSources(picks []func() int) int {
	sum := 1
	for _, read := range picks {
		sum += read()
	}
	return sum
}
