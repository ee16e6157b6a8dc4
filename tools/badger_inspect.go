// Command badger_inspect dumps the content of a messenger store as a table.
// Handy for checking what a test or a crashed instance left behind:
//
//	go run ./tools -db /tmp/messenger -prefix msg:
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"messenger-core/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/messenger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, msgid:, sts:, chat:, att:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Family", "Timestamp", "Detail"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, value []byte) []string {
	family, _, _ := strings.Cut(key, ":")
	timestamp := "--:--:--"
	detail := fmt.Sprintf("%d bytes", len(value))

	switch family {
	case "msg", "msgid":
		if msg, err := repositories.DecodeMessage(value); err == nil {
			timestamp = msg.CreatedAt.Format(time.TimeOnly)
			detail = fmt.Sprintf("chat=%d sender=%d content=%q", msg.Chat, msg.Sender, truncate(msg.Content, 40))
		}
	case "sts":
		if status, at, err := repositories.DecodeStatusValue(value); err == nil {
			timestamp = at.Format(time.TimeOnly)
			detail = status.String()
		}
	}
	return []string{key, family, timestamp, detail}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)
	return badger.Open(opts)
}
