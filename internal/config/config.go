package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Loan period bounds enforced at bundle creation.
	MinPeriodSecs int64
	MaxPeriodSecs int64

	// EngineAddress holds escrowed reward pools on the payment ledger and
	// escrowed NFTs in the registry.
	EngineAddress string
	OwnerAddress  string
	// AdminAddresses is a comma-separated allow-list for reward crediting.
	AdminAddresses []string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt64(k string, d int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	// a .env file is optional; real env vars win either way
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "nftlend"),
		MySQLUser: getenv("MYSQL_USER", "nftlend"),
		MySQLPass: getenv("MYSQL_PASS", "nftlend"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		MinPeriodSecs: getenvInt64("LOAN_MIN_PERIOD_SECONDS", 86400),    // 1 day
		MaxPeriodSecs: getenvInt64("LOAN_MAX_PERIOD_SECONDS", 31536000), // 365 days

		EngineAddress: strings.ToLower(getenv("ENGINE_ADDRESS", "00000000000000000000000000000000000000ee")),
		OwnerAddress:  strings.ToLower(getenv("OWNER_ADDRESS", "")),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("ADMIN_ADDRESSES"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				c.AdminAddresses = append(c.AdminAddresses, a)
			}
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.MinPeriodSecs <= 0 || c.MaxPeriodSecs < c.MinPeriodSecs {
		return fmt.Errorf("invalid loan period bounds [%d, %d]", c.MinPeriodSecs, c.MaxPeriodSecs)
	}
	if c.EngineAddress == "" {
		return errors.New("missing ENGINE_ADDRESS")
	}
	if c.OwnerAddress == "" {
		return errors.New("missing OWNER_ADDRESS")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
