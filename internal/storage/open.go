package storage

import (
	"fmt"
	"strings"
)

// Open connects to the SQL store named by url. "mysql://<dsn>" selects
// MySQL; "sqlite://<path>" or a bare path selects SQLite.
func Open(url string) (*SQLStorage, error) {
	switch {
	case strings.HasPrefix(url, "mysql://"):
		return NewMySQLStorage(strings.TrimPrefix(url, "mysql://"))
	case strings.HasPrefix(url, "sqlite://"):
		return NewSQLiteStorage(strings.TrimPrefix(url, "sqlite://"))
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("unsupported store url %q", url)
	default:
		return NewSQLiteStorage(url)
	}
}
