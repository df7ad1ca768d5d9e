package storage

import (
	"errors"
	"path"
	"strings"

	"github.com/gosimple/slug"
)

// ErrObjectExists is returned when a payload is stored under a key that is already taken
var ErrObjectExists = errors.New("storage: object already exists")

// ObjectKey derives a storage key from a payload name. Each path segment is
// slugged and the file extension of the last segment is kept, so
// "LIVE/000001/Inventory Report.tsv" becomes "live/000001/inventory-report.tsv".
func ObjectKey(prefix, name string) (string, error) {
	var parts []string
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		ext := ""
		if i == len(segments)-1 {
			ext = strings.ToLower(path.Ext(seg))
			seg = strings.TrimSuffix(seg, path.Ext(seg))
		}
		s := slug.Make(seg)
		if s == "" {
			continue
		}
		parts = append(parts, s+ext)
	}
	if len(parts) == 0 {
		return "", errors.New("storage key is required")
	}
	return joinKey(strings.Trim(prefix, "/"), parts...), nil
}
