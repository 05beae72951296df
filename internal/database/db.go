package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
)

// OpenAudit connects to the MySQL audit database and verifies the
// connection.
func OpenAudit(cfg config.AuditDBConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", AuditDSN(cfg))
	if err != nil {
		return nil, err
	}

	// Pool settings; the consumer is the only writer.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// AuditDSN renders the driver DSN.  parseTime maps DATETIME to time.Time and
// loc=UTC keeps stored times consistent.
func AuditDSN(cfg config.AuditDBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + cfg.Port
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
