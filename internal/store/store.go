package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	sqlmysql "github.com/go-sql-driver/mysql"
	"github.com/spigell/jobfit/internal/interview"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrNotFound is returned by writes that target a missing row.
var ErrNotFound = errors.New("not found")

// Gateway is everything the application persists: roles, their cached
// plans and the append-only evaluation history.
type Gateway interface {
	interview.PlanStore
	interview.EvaluationStore

	CreateRole(ctx context.Context, role *interview.RoleProfile) (int64, error)
	UpdateRole(ctx context.Context, role interview.RoleProfile) error
	ListRoles(ctx context.Context) ([]interview.RoleProfile, error)
	GetRole(ctx context.Context, id int64) (*interview.RoleProfile, bool, error)
	// DeleteRole removes the role and its cached plan. Evaluations are kept.
	DeleteRole(ctx context.Context, id int64) error

	ListEvaluations(ctx context.Context) ([]interview.EvaluationSummary, error)
	GetEvaluation(ctx context.Context, id int64) (*interview.Evaluation, bool, error)

	Close() error
}

var (
	_ Gateway = (*DB)(nil)
	_ Gateway = (*Memory)(nil)
)

type Config struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (Gateway, error) {
	if log == nil {
		log = zap.NewNop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == DriverMemory {
		log.Warn("using in-memory storage, nothing will survive a restart")
		return NewMemory(), nil
	}

	dialector, err := dialectorFor(driver, cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	gateway := NewDB(db)
	if err := gateway.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database connected", zap.String("driver", driver), zap.String("host", cfg.Host))
	return gateway, nil
}

func dialectorFor(driver string, cfg Config) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL, "":
		return gormmysql.Open(MySQLDSN(cfg)), nil
	case DriverPostgres:
		return postgres.Open(PostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// MySQLDSN returns cfg.DSN when set, otherwise assembles one from the discrete fields.
func MySQLDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	c := sqlmysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	c.DBName = cfg.Name
	c.ParseTime = true
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// PostgresDSN returns cfg.DSN when set, otherwise assembles a keyword/value DSN.
func PostgresDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	parts := []string{
		"host=" + cfg.Host,
		"port=" + strconv.Itoa(port),
		"user=" + cfg.User,
		"dbname=" + cfg.Name,
		"sslmode=disable",
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteValue(cfg.Password))
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
