// Command classify runs the section classifier and regional aggregator over a
// JSON fixture, without SensorThings or Kafka. Useful for checking thresholds
// and exponents against recorded forecasts.
//
// Usage:
//
//	go run ./cmd/classify -in testdata/forecasts.json -p 3
//
// Fixture format:
//
//	{"sections": [{"id": "390", "name": "Astico m .00",
//	  "thresholds": [170, 180, 190],
//	  "samples": [{"timestamp": "2018-01-26T08:00:00.000Z", "value": 172.4, "observationId": "9001"}]}]}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
)

type fixture struct {
	Sections []fixtureSection `json:"sections"`
}

type fixtureSection struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Thresholds []float64               `json:"thresholds"`
	Samples    []domain.ForecastSample `json:"samples"`
}

func main() {
	in := flag.String("in", "", "path to the forecast fixture (JSON)")
	p := flag.Float64("p", 3, "power mean exponent for the regional index")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*in, *p, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func run(path string, p float64, stdout, stderr io.Writer) int {
	fx, err := loadFixture(path)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	hist := domain.NewScaleHistogram()

	fmt.Fprintf(stdout, "%-10s %-28s %10s %-26s %s\n", "ID", "NAME", "PEAK", "PEAK TIME", "SCALE")
	for _, s := range fx.Sections {
		if len(s.Thresholds) != 3 {
			fmt.Fprintf(stderr, "FATAL: section %s: want 3 thresholds, got %d\n", s.ID, len(s.Thresholds))
			return 1
		}
		th := domain.Threshold{T1: s.Thresholds[0], T2: s.Thresholds[1], T3: s.Thresholds[2]}

		c, err := domain.Classify(domain.ForecastSeries{Samples: s.Samples}, th)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: section %s: %v\n", s.ID, err)
			return 1
		}
		if err := hist.Record(c); err != nil {
			fmt.Fprintf(stderr, "FATAL: section %s: %v\n", s.ID, err)
			return 1
		}

		fmt.Fprintf(stdout, "%-10s %-28s %10.2f %-26s %d %s\n",
			s.ID, s.Name, c.PeakValue, c.PeakSample.Timestamp, c.Scale, c.Note)
	}

	counts := hist.Counts()
	idx, err := hist.OverallIndex(p)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: overall index: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Histogram: %v (%d sections)\n", counts, hist.Total())
	fmt.Fprintf(stdout, "Power mean (p=%g): %.4f\n", p, idx.Mean)
	fmt.Fprintf(stdout, "Overall Crisis Classification Index: %d %s (%s)\n", idx.Value, idx.Note, idx.Color)
	return 0
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fixture{}, err
	}
	return fx, nil
}
