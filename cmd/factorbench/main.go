// Command factorbench compares decode strategies for factor files.
//
// Every strategy is read once to warm the page cache and then timed over
// -runs reads. Latencies are reported relative to the slowest strategy.
// Without -file arguments a synthetic price/volume/timestamp table is
// generated in a temporary directory in every supported compression.
package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/colvec/factor/compress"
	"github.com/colvec/factor/errs"
	"github.com/colvec/factor/format"
	"github.com/colvec/factor/internal/fixture"
	"github.com/colvec/factor/reader"
)

type arrayFlags []string

func (a *arrayFlags) String() string {
	return strings.Join(*a, ",")
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

type strategy struct {
	name string
	path string
	mode format.Mode
}

type result struct {
	strategy
	mean        time.Duration
	fingerprint uint64
	size        int64
}

func main() {
	var (
		files    arrayFlags
		rows     int
		runs     int
		prefetch bool
		keep     bool
	)

	flag.Var(&files, "file", "Factor file to benchmark (repeatable); generated when omitted")
	flag.IntVar(&rows, "rows", 1_000_000, "Rows of the generated table")
	flag.IntVar(&runs, "runs", 5, "Timed reads per strategy")
	flag.BoolVar(&prefetch, "prefetch", false, "Ask the kernel to read mapped files ahead")
	flag.BoolVar(&keep, "keep", false, "Keep generated files")
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if runs < 1 || rows < 0 {
		fmt.Fprintf(os.Stderr, "error: --runs must be positive and --rows non-negative\n")
		flag.Usage()
		os.Exit(1)
	}

	generated := len(files) == 0
	if generated {
		dir, err := os.MkdirTemp("", "factorbench-")
		if err != nil {
			level.Error(logger).Log("msg", "failed to create work dir", "err", err)
			os.Exit(1)
		}
		if !keep {
			defer os.RemoveAll(dir)
		}

		paths, err := generate(dir, rows, logger)
		if err != nil {
			level.Error(logger).Log("msg", "failed to generate files", "dir", dir, "err", err)
			os.Exit(1)
		}
		files = paths
	}

	var strategies []strategy
	for _, f := range files {
		base := filepath.Base(f)
		strategies = append(strategies,
			strategy{name: base + "/mapped", path: f, mode: format.ModeMapped},
			strategy{name: base + "/buffered", path: f, mode: format.ModeBuffered},
		)
	}

	var results []result
	for _, s := range strategies {
		r, err := measure(s, runs, prefetch)
		if errors.Is(err, errs.ErrUnsupportedMode) {
			level.Debug(logger).Log("msg", "skipping strategy", "strategy", s.name, "reason", err)
			continue
		}
		if err != nil {
			level.Error(logger).Log("msg", "read failed", "strategy", s.name, "err", err)
			os.Exit(1)
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		level.Warn(logger).Log("msg", "no strategy could decode the given files")
		return
	}

	report(results, generated, logger)
}

// generate writes the same synthetic table uncompressed and in every framed algorithm.
func generate(dir string, rows int, logger log.Logger) ([]string, error) {
	rng := rand.New(rand.NewPCG(1, 2))
	prices := make([]float32, rows)
	volumes := make([]int32, rows)
	timestamps := make([]int64, rows)
	for i := range rows {
		prices[i] = 10 + rng.Float32()*990
		volumes[i] = 100 + rng.Int32N(1_000_000)
		timestamps[i] = 1_630_000_000 + int64(i)
	}

	im := fixture.New(
		fixture.Float32("price", prices...),
		fixture.Int32("volume", volumes...),
		fixture.Int64("timestamp", timestamps...),
	)

	raw := im.Bytes()
	paths := []string{filepath.Join(dir, "factors_raw.fact")}
	if err := os.WriteFile(paths[0], raw, 0o600); err != nil {
		return nil, err
	}

	for _, typ := range []format.CompressionType{format.CompressionGzip, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		data, err := im.Wrapped(typ)
		if err != nil {
			return nil, fmt.Errorf("compress %s: %w", typ, err)
		}

		path := filepath.Join(dir, "factors_"+strings.ToLower(typ.String())+".facg")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, err
		}
		paths = append(paths, path)

		stats := compress.CompressionStats{
			Algorithm:      typ,
			OriginalSize:   int64(len(raw)),
			CompressedSize: int64(len(data)),
		}
		level.Info(logger).Log("msg", "generated file", "path", path, "algorithm", typ,
			"bytes", stats.CompressedSize, "ratio", fmt.Sprintf("%.3f", stats.CompressionRatio()))
	}
	level.Info(logger).Log("msg", "generated file", "path", paths[0], "rows", rows, "bytes", len(raw))

	return paths, nil
}

// measure reads s once untimed, then runs times, and returns the mean latency.
func measure(s strategy, runs int, prefetch bool) (result, error) {
	opts := []reader.Option{reader.WithMode(s.mode), reader.WithPrefetch(prefetch)}

	fp, err := readOnce(s.path, opts)
	if err != nil {
		return result{}, err
	}

	var total time.Duration
	for range runs {
		start := time.Now()
		if _, err := readOnce(s.path, opts); err != nil {
			return result{}, err
		}
		total += time.Since(start)
	}

	fi, err := os.Stat(s.path)
	if err != nil {
		return result{}, err
	}

	return result{strategy: s, mean: total / time.Duration(runs), fingerprint: fp, size: fi.Size()}, nil
}

// readOnce decodes path and touches every column so mapped pages are faulted in.
func readOnce(path string, opts []reader.Option) (uint64, error) {
	t, err := reader.Read(path, opts...)
	if err != nil {
		return 0, err
	}
	defer t.Close()

	return t.Fingerprint()
}

func report(results []result, sameTable bool, logger log.Logger) {
	slowest := slices.MaxFunc(results, func(a, b result) int {
		return cmp.Compare(a.mean, b.mean)
	})

	for _, r := range results {
		var improvement float64
		if slowest.mean > 0 {
			improvement = float64(slowest.mean-r.mean) / float64(slowest.mean) * 100
		}
		level.Info(logger).Log("msg", "strategy", "name", r.name, "mode", r.mode,
			"mean", r.mean, "file_mb", fmt.Sprintf("%.2f", float64(r.size)/1024/1024),
			"faster_than_slowest_pct", fmt.Sprintf("%.2f", improvement),
			"fingerprint", fmt.Sprintf("%016x", r.fingerprint))
	}

	if !sameTable {
		return
	}
	// all files generated from one table must decode to the same contents
	for _, r := range results[1:] {
		if r.fingerprint != results[0].fingerprint {
			level.Warn(logger).Log("msg", "decoded contents differ", "a", results[0].name, "b", r.name)
		}
	}
}
