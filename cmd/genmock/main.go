// Command genmock reads a sensor CSV export and writes the normalized
// readings as a JSON fixture. It uses the real domain transforms so the
// fixture matches what iotload would persist, and prints the counts needed
// when updating test assertions.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/IOT-temp.csv \
//	  -out data/mock/readings.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/adapter/csvfile"
	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "sensor CSV export to normalize")
	out := flag.String("out", "", "output path for the readings JSON fixture")
	flag.Parse()

	if *csvPath == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -out")
	}

	tbl, err := csvfile.ReadFile(*csvPath)
	if err != nil {
		return err
	}
	readings, stats, err := domain.Transform(tbl)
	if err != nil {
		return fmt.Errorf("transform %s: %w", *csvPath, err)
	}
	log.Printf("%s: %d rows, %d readings", *csvPath, stats.Read, len(readings))

	if err := writeJSON(*out, readings); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(readings, stats)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type roomCount struct {
	room  string
	count int
}

func printStats(readings []domain.Reading, stats domain.Stats) {
	color.Cyan("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows read: %d\n", stats.Read)
	fmt.Printf("Dropped: no_timestamp=%d, no_temperature=%d\n",
		stats.DroppedNoTimestamp, stats.DroppedNoTemperature)
	fmt.Printf("Readings: %d\n", len(readings))
	if len(readings) == 0 {
		return
	}

	locations := map[string]int{}
	rooms := map[string]int{}
	days := map[string]int{}
	first, last := readings[0].Timestamp, readings[0].Timestamp
	minTemp, maxTemp := readings[0].TemperatureC, readings[0].TemperatureC

	for i := range readings {
		r := &readings[i]
		loc := "null"
		if r.Location != nil {
			loc = string(*r.Location)
		}
		locations[loc]++

		room := "null"
		if r.Room != nil {
			room = *r.Room
		}
		rooms[room]++
		days[r.Timestamp.Format(time.DateOnly)]++

		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
		minTemp = min(minTemp, r.TemperatureC)
		maxTemp = max(maxTemp, r.TemperatureC)
	}

	fmt.Printf("By location: In=%d, Out=%d, null=%d\n", locations["In"], locations["Out"], locations["null"])
	fmt.Printf("Temperature range: %g to %g C\n", minTemp, maxTemp)
	fmt.Printf("Time range: %s to %s (%d days)\n",
		first.Format(time.RFC3339), last.Format(time.RFC3339), len(days))

	rc := make([]roomCount, 0, len(rooms))
	for r, c := range rooms {
		rc = append(rc, roomCount{r, c})
	}
	sort.Slice(rc, func(i, j int) bool { return rc[i].count > rc[j].count })

	color.Yellow("\nRooms (%d)", len(rc))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Readings"})
	for _, r := range rc {
		table.Append([]string{r.room, strconv.Itoa(r.count)})
	}
	table.Render()
}
