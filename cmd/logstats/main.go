// Command logstats prints summary statistics of the race log.
//
// Usage: logstats [options]
package main

import (
	"flag"
	"fmt"
	"os"

	"kartlog/internal/config"
	"kartlog/internal/racelog"
)

func main() {
	configPath := flag.String("config", "kartlog.toml", "settings file")
	logPath := flag.String("log", "", "race log path (overrides the settings file)")
	recent := flag.Int("recent", 10, "number of recent races to list")
	flag.Parse()

	if err := run(*configPath, *logPath, *recent); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string, recent int) error {
	path := logPath
	if path == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path = cfg.Paths.RaceLog
	}

	store := racelog.NewStore(path)
	summary, err := store.Stats()
	if err != nil {
		return err
	}
	if summary.TotalRaces == 0 {
		fmt.Println("no races recorded")
		return nil
	}

	fmt.Printf("races:         %d\n", summary.TotalRaces)
	fmt.Printf("recent mean:   %.0f\n", summary.RecentMean)
	fmt.Printf("highest rate:  %d\n", summary.MaxRate)
	fmt.Printf("lowest rate:   %d\n", summary.MinRate)

	recs, err := store.All()
	if err != nil {
		return err
	}
	if recent > len(recs) {
		recent = len(recs)
	}
	if recent > 0 {
		fmt.Println()
		for _, r := range recs[len(recs)-recent:] {
			fmt.Printf("%s  %-40s  %2d/%-2d  %5d  %+d\n",
				r.Timestamp.Format("2006-01-02 15:04"), r.Course,
				r.Rank, r.Participants, r.Rate, r.RateChange)
		}
	}
	return nil
}
