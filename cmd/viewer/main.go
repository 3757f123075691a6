package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"wish-wall/domain/wall"
	"wish-wall/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/wall", "Path to badger DB")
	appID := flag.String("app", "", "Only show the wall of this app id")
	port := flag.Int("serve", 0, "Serve the inspector page on this port instead of printing a table")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	prefix := storage.BadgerKeyPrefix
	if *appID != "" {
		prefix += wall.Collection(*appID).String() + ":"
	}

	if *port > 0 {
		serve(db, *port, prefix)
		return
	}
	if err = render(db, prefix); err != nil {
		log.Fatal(err)
	}
}

// serve blocks until interrupted. Another process may keep writing while the page is open.
func serve(db *badger.DB, port int, prefix string) {
	fmt.Printf("🌐 Viewer started at http://localhost:%d/inspect?prefix=%s\n", port, prefix)
	database.StartDebugServer(db, port, "/inspect", storage.InspectMapper)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func render(db *badger.DB, prefix string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Status", "Created", "Wish"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				row := storage.InspectMapper(key, v)
				table.Append([]string{key[strings.LastIndex(key, ":")+1:], row.Type, row.Scores, row.Detail})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

// openDB opens read-only so a running wall keeps its lock.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
