package main

import (
	"flag"
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/infrastructure/storage"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

var statusColors = map[domain.OffloadStatus]color.Color{
	domain.OffloadStarted:   color.FgCyan,
	domain.OffloadCompleted: color.FgGreen,
	domain.OffloadFailed:    color.FgRed,
	domain.OffloadTimedOut:  color.FgYellow,
	domain.OffloadAbandoned: color.FgGray,
}

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	limit := flag.Int("limit", 0, "Maximum number of records, 0 for all")
	pending := flag.Bool("pending", false, "Only continuations still running")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := storage.NewOffloadRepository(db, slog.Default(), 0)
	var records []domain.OffloadRecord
	if *pending {
		records, err = repository.Pending()
	} else {
		records, err = repository.List(*limit)
	}
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Interaction", "Prefix", "Status", "Started", "Duration", "Error"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, r := range records {
		table.Append([]string{
			shortID(r.ID),
			r.InteractionID,
			r.Prefix,
			statusColors[r.Status].Render(string(r.Status)),
			r.StartedAt.Local().Format(time.DateTime),
			duration(r),
			r.Error,
		})
	}
	table.Render()
	fmt.Printf("%d record(s)\n", len(records))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func duration(r domain.OffloadRecord) string {
	if r.EndedAt.IsZero() {
		return "-"
	}
	return r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
}

// openDB opens the store read-only so a running server keeps its lock.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil && strings.Contains(err.Error(), "Log truncate required") {
		return nil, fmt.Errorf("%w (stop the server so it can truncate its value log)", err)
	}
	return db, err
}
