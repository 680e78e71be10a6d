package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/reverie-systems/reverb/reactive"
)

const (
	itersKey      = "iters"
	cpuProfileKey = "cpuprofile"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Propagation benchmarks for the reverb reactive runtime",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Writes per graph shape",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  cpuProfileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))

	if profile := cmd.String(cpuProfileKey); profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			return fmt.Errorf("can't create profile file: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("can't start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Print("warming up")
	benchmarkPropagate(1, 1, iters)

	tbl := table.NewWriter()
	tbl.SetTitle("reverb propagate")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "writes/sec"})

	for _, w := range ww {
		for _, h := range hh {
			calc := benchmarkPropagate(w, h, iters)
			perSec := int64(0)
			if calc.Time.Avg > 0 {
				perSec = int64(time.Second / calc.Time.Avg)
			}
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
					humanize.Comma(perSec),
				},
			})
		}
	}

	tbl.Render()
	return nil
}

// benchmarkPropagate builds one source signal feeding w independent
// chains of h memos, each chain observed by one effect, then times
// iters writes to the source.
func benchmarkPropagate(w, h, iters int) *tachymeter.Metrics {
	rt := reactive.NewRuntime(reactive.OnError(func(err error) {
		log.Panic(err)
	}))

	src := reactive.NewSignal(rt, 1)
	tails := make([]func() int, w)
	for i := 0; i < w; i++ {
		read := src.Get
		for j := 0; j < h; j++ {
			prev := read
			m := reactive.NewMemo(rt, func() (int, error) {
				return prev() + 1, nil
			})
			read = m.Get
		}
		tail := read
		tails[i] = tail
		reactive.NewEffect(rt, func() error {
			tail()
			return nil
		})
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		src.Set(src.Peek() + 1)
		tach.AddTime(time.Since(start))
	}

	verifyChains(src.Peek(), h, tails)
	return tach.Calc()
}

// verifyChains checksums every chain tail against the analytic result
// (source + chain height) so a propagation bug fails loudly instead of
// just producing pretty numbers.
func verifyChains(src, h int, tails []func() int) {
	got := xxhash.New()
	want := xxhash.New()
	for _, tail := range tails {
		fmt.Fprintf(got, "%d,", tail())
		fmt.Fprintf(want, "%d,", src+h)
	}
	if got.Sum64() != want.Sum64() {
		log.Fatalf("propagation checksum mismatch: got %x, want %x", got.Sum64(), want.Sum64())
	}
}
