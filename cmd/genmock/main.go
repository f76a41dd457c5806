// Command genmock writes synthetic instrument dump files for demos and
// fixtures. The output deliberately includes the mess the parsers must
// survive: noise banners, truncated sentences, missing-value sentinels, and
// timestamp-only fragments.
//
// Usage:
//
//	go run ./cmd/genmock -out data -lines 200
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var baseTime = time.Date(2019, time.May, 1, 0, 0, 0, 0, time.UTC)

func main() {
	out := flag.String("out", "data", "output directory (instrument subdirs are created)")
	lines := flag.Int("lines", 200, "approximate data lines per file")
	seed := flag.Int64("seed", 1, "rng seed for reproducible fixtures")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	files := map[string]func(*rand.Rand, int) string{
		filepath.Join("metbk", "20190501.metbk.log"): genMetbk,
		filepath.Join("wavss", "20190501.wavss.log"): genWavss,
		filepath.Join("velpt", "20190501.velpt.dat"): genVelpt,
	}

	for rel, gen := range files {
		path := filepath.Join(*out, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(gen(rng, *lines)), 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", path)
	}
}

func dclStamp(i int) string {
	return baseTime.Add(time.Duration(i) * time.Minute).Format("2006/01/02 15:04:05.000")
}

func genMetbk(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.WriteString("[metbk:DLOGP3]:instrument started\n")
	for i := 0; i < n; i++ {
		switch {
		case rng.Float64() < 0.03:
			// Timestamp-only fragment: recoverable in lenient mode.
			fmt.Fprintf(&b, "%s <ERR instrument timeout>\n", dclStamp(i))
		case rng.Float64() < 0.03:
			b.WriteString("### heartbeat ###\n")
		default:
			fmt.Fprintf(&b, "%s %s %.1f\n", dclStamp(i), metbkFields(rng), 11.5+rng.Float64())
		}
	}
	return b.String()
}

func metbkFields(rng *rand.Rand) string {
	vals := []float64{
		1010 + rng.Float64()*10, // barometric pressure
		70 + rng.Float64()*25,   // relative humidity
		12 + rng.Float64()*6,    // air temperature
		330 + rng.Float64()*40,  // longwave irradiance
		rng.Float64() * 2,       // precipitation
		13 + rng.Float64()*4,    // sea surface temperature
		33 + rng.Float64()*4,    // conductivity
		rng.Float64() * 800,     // shortwave irradiance
		-5 + rng.Float64()*10,   // wind eastward
		-5 + rng.Float64()*10,   // wind northward
	}
	toks := make([]string, len(vals))
	for i, v := range vals {
		if rng.Float64() < 0.02 {
			toks[i] = "Na " // dropped sensor channel
			continue
		}
		toks[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(toks, " ")
}

func genWavss(rng *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		stamp := dclStamp(i * 5)
		switch {
		case rng.Float64() < 0.05:
			fmt.Fprintf(&b, "%s $TSPSA,buoyID,,,heave spectrum skipped\n", stamp)
		case rng.Float64() < 0.03:
			// Truncated sentence: fails the arity gate.
			fmt.Fprintf(&b, "%s $TSPWA,20190501,%06d,05781,buoyID,40.13,-70.77\n", stamp, i)
		default:
			fmt.Fprintf(&b,
				"%s $TSPWA,20190501,%06d,05781,buoyID,40.134,-70.776,%d,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f,%.1f,%.1f*%02X\n",
				stamp, i, 40+rng.Intn(40),
				0.5+rng.Float64(), 4+rng.Float64()*4, 1+rng.Float64()*3,
				0.8+rng.Float64()*2, 5+rng.Float64()*5, 1.2+rng.Float64()*2,
				6+rng.Float64()*4, 4+rng.Float64()*4, 7+rng.Float64()*5,
				7+rng.Float64()*5, 1+rng.Float64()*2,
				rng.Float64()*360, rng.Float64()*90, rng.Intn(256))
		}
	}
	return b.String()
}

func genVelpt(rng *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		t := baseTime.Add(time.Duration(i) * 15 * time.Minute)
		fmt.Fprintf(&b, "%02d %02d %d %02d %02d %02d 0 48",
			int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute(), t.Second())
		for j := 0; j < 17; j++ {
			fmt.Fprintf(&b, " %.3f", -1+rng.Float64()*2)
		}
		b.WriteString("\n")
	}
	return b.String()
}
