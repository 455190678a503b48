package batch

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestMySQLDSN(t *testing.T) {
	cfg := DBConfig{User: "gpa", Password: "p@ss", Database: "school", Params: map[string]string{"timeout": "5s"}}
	parsed, err := mysql.ParseDSN(cfg.dsn())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.User != "gpa" || parsed.Passwd != "p@ss" || parsed.DBName != "school" {
		t.Fatalf("unexpected credentials: %+v", parsed)
	}
	if parsed.Addr != "127.0.0.1:3306" || parsed.Net != "tcp" {
		t.Fatalf("unexpected address %s/%s", parsed.Net, parsed.Addr)
	}
	if !parsed.ParseTime {
		t.Fatalf("expected parseTime")
	}
	if parsed.Params["charset"] != "utf8mb4" {
		t.Fatalf("unexpected params %v", parsed.Params)
	}
	if parsed.Timeout.String() != "5s" {
		t.Fatalf("unexpected timeout %s", parsed.Timeout)
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := DBConfig{Driver: DriverSQLite, Path: "/tmp/g.db"}.dsn()
	if !strings.HasPrefix(dsn, "file:/tmp/g.db?") || !strings.Contains(dsn, "_busy_timeout=10000") {
		t.Fatalf("unexpected dsn %s", dsn)
	}
}

func TestDBConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  DBConfig
		ok   bool
	}{
		{"mysql", DBConfig{User: "u", Database: "d"}, true},
		{"mysql no user", DBConfig{Database: "d"}, false},
		{"mysql no database", DBConfig{User: "u"}, false},
		{"sqlite", DBConfig{Driver: DriverSQLite, Path: "x.db"}, true},
		{"sqlite no path", DBConfig{Driver: DriverSQLite}, false},
		{"unknown", DBConfig{Driver: "postgres"}, false},
	}
	for _, c := range cases {
		if err := c.cfg.validate(); (err == nil) != c.ok {
			t.Fatalf("%s: validate() = %v, want ok=%v", c.name, err, c.ok)
		}
	}
}
