package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DriverFromURL maps a state URL onto a database/sql driver name and DSN.
// postgres:// and postgresql:// go to pgx, sqlite:// to sqlite3.
func DriverFromURL(raw string) (driver, dsn string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return "pgx", raw, nil
	case "sqlite", "sqlite3":
		p := strings.TrimPrefix(raw, u.Scheme+"://")
		if p == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", raw)
		}
		return "sqlite3", p, nil
	}
	return "", "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
}

func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite3" {
		// single writer; sqlite serializes anyway
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	deadline := time.Now().Add(15 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			_ = db.Close()
			return nil, err
		}
		time.Sleep(500 * time.Millisecond)
	}

	return db, nil
}
