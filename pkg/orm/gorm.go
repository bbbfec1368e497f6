package orm

import (
	"database/sql"
	"flag"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBUtil provisions and tears down the database itself. It connects to
// information_schema rather than the service database, so CreateDB can
// run before the database exists.
type DBUtil interface {
	CreateDB() error
	DropDB() error
	GetUtilDB() *gorm.DB
	Close() error
}

// DB is a handle on the service database.
type DB interface {
	GetDB() *gorm.DB
	ClearAllData() error
	Close() error
}

// DBConfig carries MySQL connection settings.
type DBConfig struct {
	Username        string
	Password        string
	Host            string
	Port            string
	DBName          string
	MaxIdleConns    int
	MaxOpenConns    int
	DBCharset       string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MultiStatements bool
}

func (c *DBConfig) charset() string {
	if c.DBCharset == "" {
		return "utf8mb4"
	}
	return c.DBCharset
}

func (c *DBConfig) connMaxLifetime() time.Duration {
	if c.ConnMaxLifetime == 0 {
		return time.Hour
	}
	return c.ConnMaxLifetime
}

func (c *DBConfig) connMaxIdleTime() time.Duration {
	if c.ConnMaxIdleTime == 0 {
		return 10 * time.Minute
	}
	return c.ConnMaxIdleTime
}

// quoteIdent backtick-quotes a MySQL identifier so it can be spliced into
// DDL that does not accept placeholders.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// MakeDB opens the service database named in cfg.
func MakeDB(cfg *DBConfig) (DB, error) {
	return openMySQL(cfg, false)
}

// MakeDBUtil opens an administrative connection for CreateDB/DropDB.
func MakeDBUtil(cfg *DBConfig) (DBUtil, error) {
	return openMySQL(cfg, true)
}

type mysqlDB struct {
	cfg     *DBConfig
	db      *gorm.DB
	adminDB *gorm.DB
	sqlDB   *sql.DB
}

func openMySQL(cfg *DBConfig, admin bool) (*mysqlDB, error) {
	m := &mysqlDB{cfg: cfg}

	name := cfg.DBName
	silent := true
	if admin {
		// DDL against a database that may not exist yet; keep the
		// query log on so provisioning failures are visible.
		name = "information_schema"
		silent = false
	}

	db, sqlDB, err := m.open(m.dsn(name), silent)
	if err != nil {
		return nil, err
	}

	m.sqlDB = sqlDB
	if admin {
		m.adminDB = db
	} else {
		m.db = db
	}
	return m, nil
}

// Close releases the underlying connection pool.
func (m *mysqlDB) Close() error {
	if m.sqlDB == nil {
		return nil
	}
	return m.sqlDB.Close()
}

// CreateDB creates the configured database if it does not exist.
func (m *mysqlDB) CreateDB() error {
	if m.adminDB == nil {
		return fmt.Errorf("no admin connection, use MakeDBUtil")
	}

	cs := m.cfg.charset()
	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s DEFAULT CHARSET %s COLLATE %s_general_ci;",
		quoteIdent(m.cfg.DBName), cs, cs)
	if err := m.adminDB.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create database %s: %w", m.cfg.DBName, err)
	}
	return nil
}

// DropDB drops the configured database if it exists.
func (m *mysqlDB) DropDB() error {
	if m.adminDB == nil {
		return fmt.Errorf("no admin connection, use MakeDBUtil")
	}

	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS %s;", quoteIdent(m.cfg.DBName))
	if err := m.adminDB.Exec(stmt).Error; err != nil {
		return fmt.Errorf("drop database %s: %w", m.cfg.DBName, err)
	}
	return nil
}

func (m *mysqlDB) GetUtilDB() *gorm.DB {
	return m.adminDB
}

func (m *mysqlDB) GetDB() *gorm.DB {
	return m.db
}

// ClearAllData deletes every row from every table. Refuses to run outside
// `go test`, and refuses databases whose name does not look like a test or
// dev database.
func (m *mysqlDB) ClearAllData() error {
	if flag.Lookup("test.v") == nil {
		return fmt.Errorf("ClearAllData is restricted to go test runs")
	}
	if !strings.Contains(m.cfg.DBName, "test") && !strings.Contains(m.cfg.DBName, "dev") {
		return fmt.Errorf("ClearAllData refuses database %q, want a test or dev database", m.cfg.DBName)
	}
	if m.db == nil {
		return fmt.Errorf("no service connection, use MakeDB")
	}

	rows, err := m.db.Raw("SHOW TABLES;").Rows()
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var table string
	for rows.Next() {
		if err := rows.Scan(&table); err != nil {
			return fmt.Errorf("scan table name: %w", err)
		}
		if table == "" {
			continue
		}
		if err := m.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteIdent(table))).Error; err != nil {
			return fmt.Errorf("clear table %s: %w", table, err)
		}
	}
	return rows.Err()
}

func (m *mysqlDB) open(dsn string, silent bool) (*gorm.DB, *sql.DB, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB.SetMaxIdleConns(m.cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(m.cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(m.cfg.connMaxLifetime())
	sqlDB.SetConnMaxIdleTime(m.cfg.connMaxIdleTime())

	gormConfig := &gorm.Config{}
	if silent {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), gormConfig)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, sqlDB, nil
}

func (m *mysqlDB) dsn(dbName string) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		m.cfg.Username,
		m.cfg.Password,
		m.cfg.Host,
		m.cfg.Port,
		dbName,
		m.cfg.charset())
	if m.cfg.MultiStatements {
		dsn += "&multiStatements=true"
	}
	return dsn
}
