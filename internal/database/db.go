package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned when the selected backend cannot be opened
// or reached.  It is fatal to the calling operation; no retry or
// backoff is performed here.
var ErrUnavailable = errors.New("storage unavailable")

// Open connects to the backend selected by info and returns the handle
// together with the matching Dialect.  When info carries DriverUnknown
// (DATABASE_URL missing or unparseable) the legacy descriptor is used
// instead, mirroring the old MYSQL_* configuration path.
func Open(info, legacy DSNInfo) (*sql.DB, Dialect, error) {
	if info.Driver == DriverUnknown {
		info = legacy
	}

	var (
		db  *sql.DB
		err error
	)
	switch info.Driver {
	case DriverSQLite:
		db, err = openSQLite(info.Path)
	case DriverMySQL:
		db, err = openMySQL(info)
	default:
		return nil, nil, fmt.Errorf("%w: no usable connection descriptor", ErrUnavailable)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return db, DialectFor(info.Driver), nil
}

func openMySQL(info DSNInfo) (*sql.DB, error) {
	auth := info.User
	if info.Password != "" {
		auth = fmt.Sprintf("%s:%s", info.User, info.Password)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, info.Host, info.Port, info.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Single writer; avoids SQLITE_BUSY under concurrent purchases.
	db.SetMaxOpenConns(1)
	return db, nil
}
