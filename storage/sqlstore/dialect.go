// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package sqlstore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Enclicainteractive/volt/storage"
)

// Dialect parametrises the one adapter body by an engine's driver name,
// DSN construction, identifier quoting, placeholder syntax, upsert
// clause and schema probes.
type Dialect struct {
	kind storage.Kind
}

// DialectFor returns the dialect for a SQL-family kind.
func DialectFor(kind storage.Kind) (Dialect, error) {
	if !kind.SQL() {
		return Dialect{}, storage.ErrConfig.New("kind %q is not a SQL engine", kind)
	}
	return Dialect{kind: kind}, nil
}

// Kind returns the engine tag the dialect serves.
func (d Dialect) Kind() storage.Kind { return d.kind }

// DriverName returns the database/sql driver to open.
func (d Dialect) DriverName() string {
	switch d.kind {
	case storage.RowStore:
		return "sqlite3"
	case storage.MySQL, storage.MariaDB:
		return "mysql"
	case storage.Postgres, storage.Cockroach:
		return "postgres"
	case storage.SQLServer:
		return "sqlserver"
	}
	return ""
}

// DSN builds the connection string from options. An explicit
// connectionString option wins over the composed form.
func (d Dialect) DSN(opts storage.Options) string {
	if opts.ConnectionString != "" {
		return opts.ConnectionString
	}
	switch d.kind {
	case storage.RowStore:
		return opts.DBPath
	case storage.MySQL, storage.MariaDB:
		charset := opts.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true",
			opts.User, opts.Password, opts.Host, opts.Port, opts.Database, charset)
		if opts.SSL {
			dsn += "&tls=true"
		}
		return dsn
	case storage.Postgres, storage.Cockroach:
		sslmode := "disable"
		if opts.SSL {
			sslmode = "require"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			url.QueryEscape(opts.User), url.QueryEscape(opts.Password),
			opts.Host, opts.Port, opts.Database, sslmode)
	case storage.SQLServer:
		query := url.Values{}
		query.Set("database", opts.Database)
		if opts.TrustServerCertificate {
			query.Set("TrustServerCertificate", "true")
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(opts.User, opts.Password),
			Host:     opts.Host + ":" + strconv.Itoa(opts.Port),
			RawQuery: query.Encode(),
		}
		return u.String()
	}
	return ""
}

// QuoteIdent quotes a table name in the engine's identifier syntax.
func (d Dialect) QuoteIdent(name string) string {
	switch d.kind {
	case storage.MySQL, storage.MariaDB:
		return "`" + name + "`"
	case storage.SQLServer:
		return "[" + name + "]"
	}
	return `"` + name + `"`
}

// Rebind rewrites ? placeholders into the engine's syntax.
func (d Dialect) Rebind(query string) string {
	switch d.kind {
	case storage.Postgres, storage.Cockroach:
		return rebindNumbered(query, "$")
	case storage.SQLServer:
		return rebindNumbered(query, "@p")
	}
	return query
}

func rebindNumbered(query, prefix string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(prefix)
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateTableSQL returns the dedicated (id, data) table definition.
// MySQL and SQL Server cannot key on unbounded text, so their id
// columns carry the widest indexable length instead.
func (d Dialect) CreateTableSQL(table string) string {
	quoted := d.QuoteIdent(table)
	switch d.kind {
	case storage.MySQL, storage.MariaDB:
		return "CREATE TABLE IF NOT EXISTS " + quoted + " (id VARCHAR(191) NOT NULL PRIMARY KEY, data LONGTEXT)"
	case storage.SQLServer:
		return "IF OBJECT_ID(N'" + table + "', N'U') IS NULL " +
			"CREATE TABLE " + quoted + " (id NVARCHAR(450) NOT NULL PRIMARY KEY, data NVARCHAR(MAX))"
	}
	return "CREATE TABLE IF NOT EXISTS " + quoted + " (id TEXT PRIMARY KEY, data TEXT)"
}

// UpsertSQL returns the engine's insert-or-update statement for the
// given table, with ? placeholders for (id, data).
func (d Dialect) UpsertSQL(table string) string {
	quoted := d.QuoteIdent(table)
	switch d.kind {
	case storage.MySQL, storage.MariaDB:
		return "INSERT INTO " + quoted + " (id, data) VALUES (?, ?) ON DUPLICATE KEY UPDATE data = VALUES(data)"
	case storage.Postgres, storage.Cockroach:
		return d.Rebind("INSERT INTO " + quoted + " (id, data) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data")
	case storage.SQLServer:
		return d.Rebind("MERGE INTO " + quoted + " WITH (HOLDLOCK) AS target " +
			"USING (SELECT ? AS id, ? AS data) AS source ON target.id = source.id " +
			"WHEN MATCHED THEN UPDATE SET data = source.data " +
			"WHEN NOT MATCHED THEN INSERT (id, data) VALUES (source.id, source.data);")
	}
	// sqlite
	return "INSERT OR REPLACE INTO " + quoted + " (id, data) VALUES (?, ?)"
}

// TableExistsSQL returns the probe for a dedicated table, with a single
// ? placeholder for the table name.
func (d Dialect) TableExistsSQL() string {
	switch d.kind {
	case storage.RowStore:
		return "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
	case storage.MySQL, storage.MariaDB:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	}
	return d.Rebind("SELECT table_name FROM information_schema.tables WHERE table_name = ?")
}
