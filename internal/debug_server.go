// Package internal hosts operational helpers that never ship behavior to
// clients.
package internal

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// InspectRow is one rendered key of the store.
type InspectRow struct {
	Key    string
	Family string
	Size   int
}

// StatsProvider feeds the dashboard header, typically the timeline
// projection.
type StatsProvider func() map[string]any

type pageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

const inspectPage = `<!DOCTYPE html>
<html>
<head><title>Store inspector</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
</style>
</head>
<body>
<h2>Store inspector &mdash; prefix "{{.Prefix}}"</h2>
<p>{{range $k, $v := .Stats}}{{$k}}={{$v}} {{end}}</p>
<table>
<tr><th>Key</th><th>Family</th><th>Value size</th></tr>
{{range .Items}}<tr><td>{{.Key}}</td><td>{{.Family}}</td><td>{{.Size}}</td></tr>
{{end}}
</table>
</body>
</html>`

// StartDebugServer serves a read-only HTML view over the badger keyspace on
// a dedicated port: /inspect?prefix=msg: walks one key family. Meant for
// local operation only, never expose it publicly.
func StartDebugServer(db *badger.DB, log *slog.Logger, port int, stats StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.New("inspect").Parse(inspectPage))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := pageData{Prefix: prefix, Stats: map[string]any{}}
		if stats != nil {
			data.Stats = stats()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				key := string(item.Key())
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, InspectRow{
						Key:    key,
						Family: keyFamily(key),
						Size:   len(val),
					})
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		addr := fmt.Sprintf("localhost:%d", port)
		log.Info("Debug inspector listening", "address", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("Debug inspector stopped", "error", err)
		}
	}()
}

func keyFamily(key string) string {
	family, _, found := strings.Cut(key, ":")
	if !found {
		return "raw"
	}
	switch family {
	case "msg":
		return "message (chat ordered)"
	case "msgid":
		return "message (by id)"
	case "sts":
		return "status row"
	case "chat":
		return "chat membership"
	case "att":
		return "attachment"
	case "seq":
		return "id sequence"
	default:
		return family
	}
}
