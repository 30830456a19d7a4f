// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package storage

// Config selects the active back-end and its options.
type Config struct {
	Type    Kind    `mapstructure:"type" json:"type"`
	Options Options `mapstructure:"options" json:"options"`
	// Durable forces synchronous write-through even on remote adapters.
	Durable bool `mapstructure:"durable" json:"durable"`
}

// Options is the union of every engine's recognised options. Unknown
// keys in the source configuration are dropped by the decoder; missing
// values default per the engine's wire-protocol conventions.
type Options struct {
	Host                   string `mapstructure:"host" json:"host,omitempty"`
	Port                   int    `mapstructure:"port" json:"port,omitempty"`
	Database               string `mapstructure:"database" json:"database,omitempty"`
	User                   string `mapstructure:"user" json:"user,omitempty"`
	Password               string `mapstructure:"password" json:"password,omitempty"`
	SSL                    bool   `mapstructure:"ssl" json:"ssl,omitempty"`
	ConnectionString       string `mapstructure:"connectionString" json:"connectionString,omitempty"`
	ConnectionLimit        int    `mapstructure:"connectionLimit" json:"connectionLimit,omitempty"`
	Charset                string `mapstructure:"charset" json:"charset,omitempty"`
	AuthSource             string `mapstructure:"authSource" json:"authSource,omitempty"`
	DB                     int    `mapstructure:"db" json:"db,omitempty"`
	KeyPrefix              string `mapstructure:"keyPrefix" json:"keyPrefix,omitempty"`
	DBPath                 string `mapstructure:"dbPath" json:"dbPath,omitempty"`
	DataDir                string `mapstructure:"dataDir" json:"dataDir,omitempty"`
	TrustServerCertificate bool   `mapstructure:"trustServerCertificate" json:"trustServerCertificate,omitempty"`
}

// defaultPorts per wire protocol.
var defaultPorts = map[Kind]int{
	MySQL:     3306,
	MariaDB:   3306,
	Postgres:  5432,
	Cockroach: 26257,
	SQLServer: 1433,
	KV:        6379,
}

// WithDefaults fills unset options with the kind's conventional defaults.
func (opts Options) WithDefaults(kind Kind) Options {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == 0 {
		opts.Port = defaultPorts[kind]
	}
	if opts.Database == "" {
		opts.Database = "volt"
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "volt:"
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.DBPath == "" {
		switch kind {
		case RowStore:
			opts.DBPath = "volt.db"
		case Document:
			opts.DBPath = "volt-docs.db"
		}
	}
	if opts.ConnectionLimit == 0 {
		opts.ConnectionLimit = 10
	}
	return opts
}

// Validate reports configuration errors before any adapter is built.
func (config Config) Validate() error {
	if !config.Type.Valid() {
		return ErrConfig.New("unknown adapter kind %q", config.Type)
	}
	return nil
}
