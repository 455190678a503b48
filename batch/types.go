package batch

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/emptyOVO/mrkit-gpa/batch/sql_batch"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DBConfig defines MySQL or SQLite connection parameters.
type DBConfig struct {
	Driver   string            `json:"driver"`
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	User     string            `json:"user"`
	Password string            `json:"password"`
	Database string            `json:"database"`
	Path     string            `json:"path"` // sqlite3 only
	Params   map[string]string `json:"params"`
}

func (c *DBConfig) WithDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}
	if c.Driver == DriverMySQL {
		if c.Host == "" {
			c.Host = "127.0.0.1"
		}
		if c.Port == 0 {
			c.Port = 3306
		}
	}
}

func (c DBConfig) dsn() string {
	c.WithDefaults()
	if c.Driver == DriverSQLite {
		opts := []string{"_busy_timeout=10000", "_foreign_keys=ON"}
		for k, v := range c.Params {
			opts = append(opts, k+"="+v)
		}
		return "file:" + c.Path + "?" + strings.Join(opts, "&")
	}
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range c.Params {
		mc.Params[k] = v
	}
	return mc.FormatDSN()
}

func (c DBConfig) validate() error {
	c.WithDefaults()
	switch c.Driver {
	case DriverMySQL:
		if c.User == "" {
			return fmt.Errorf("db user is required")
		}
		if c.Database == "" {
			return fmt.Errorf("db database is required")
		}
	case DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("db path is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported db driver: %s", c.Driver)
	}
	return nil
}

func openDB(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.WithDefaults()
	db, err := sql.Open(cfg.Driver, cfg.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenForApp opens a database connection for advanced/custom flows.
func OpenForApp(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	return openDB(ctx, cfg)
}

// Unified source/sink config aliases exposed by batch package.
type SourceConfig = sql_batch.SourceConfig
type SinkConfig = sql_batch.SinkConfig

// PrepareConfig configures synthetic grade generation.
type PrepareConfig struct {
	SourceTable    string `json:"source_table"`
	Students       int    `json:"students"`
	Semesters      int    `json:"semesters"`
	CoursesPerTerm int    `json:"courses_per_term"`
	Seed           int64  `json:"seed"`
}

func (c *PrepareConfig) withDefaults() {
	if c.SourceTable == "" {
		c.SourceTable = "grades"
	}
	if c.Students <= 0 {
		c.Students = 1000
	}
	if c.Semesters <= 0 {
		c.Semesters = 4
	}
	if c.CoursesPerTerm <= 0 {
		c.CoursesPerTerm = 5
	}
	if c.Seed == 0 {
		c.Seed = 29
	}
}
