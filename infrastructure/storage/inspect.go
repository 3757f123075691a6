package storage

import (
	"fmt"
	"strings"
	"wish-wall/domain/document"
	"wish-wall/domain/wall"

	"github.com/mama165/sdk-go/database"
)

// BadgerKeyPrefix is the prefix shared by every document key.
const BadgerKeyPrefix = "doc:"

// InspectMapper renders a badger document entry as a row of the debug inspector.
func InspectMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	fields, err := decodeFields(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	id := key[strings.LastIndex(key, ":")+1:]
	msg, err := wall.FromDocument(document.Document{ID: id, Fields: fields})
	if err != nil {
		row.Type = "DOC"
		row.Detail = fmt.Sprintf("%v", map[string]any(fields))
		return row
	}
	row.Type = strings.ToUpper(string(msg.Status))
	row.Detail = msg.Text
	row.Scores = msg.CreatedTime().Format("15:04:05")
	return row
}
