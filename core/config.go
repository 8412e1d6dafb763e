package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minBcryptCost = 10

type (
	Config struct {
		AppName  string
		Env      string // DEV (local; default), TEST, PROD
		Build    string
		Debug    bool
		TestMode bool

		SecretKey          string
		JWTExpirationDelta time.Duration
		BcryptCost         int

		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Address            string
		DebugAddress       string // pprof & expvar; disabled when empty
		ShutdownTimeout    time.Duration
		RequestTimeout     time.Duration
		DisableRequestLogs bool
		CORSAllowOrigins   []string
	}

	DatabaseConfig struct {
		Engine  string // mongodb, postgres or memory
		URI     string
		Name    string
		Timeout time.Duration
	}
)

// Database engines
const (
	EngineMongoDB  = "mongodb"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the current ENV, e.g. PROD_SECRETKEY or PROD_DATABASE_URI.
// An optional config/.env.<env> file is loaded first.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Upskill Global")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", false)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "t8u#k2-p$0x9=vz&mql1(e!w)u^4c3@hs7yd+nj6b")
	v.SetDefault("jwtExpirationDelta", time.Hour)
	v.SetDefault("bcryptCost", minBcryptCost)
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Upskill Global <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.debugAddress", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.requestTimeout", 10*time.Second)
	v.SetDefault("server.disableRequestLogs", false)
	v.SetDefault("server.corsAllowOrigins", []string{"*"})
	v.SetDefault("database.engine", EngineMongoDB)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "upskill_global")
	v.SetDefault("database.timeout", 5*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", EngineMemory)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:            v.GetString("appName"),
		Env:                env,
		Build:              v.GetString("build"),
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		SecretKey:          v.GetString("secretKey"),
		JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		BcryptCost:         v.GetInt("bcryptCost"),
		FrontendBaseURL:    strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		DefaultFromEmail:   v.GetString("defaultFromEmail"),
		SendgridApiKey:     v.GetString("sendgridApiKey"),
		RollbarToken:       v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			DebugAddress:       v.GetString("server.debugAddress"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			RequestTimeout:     v.GetDuration("server.requestTimeout"),
			DisableRequestLogs: v.GetBool("server.disableRequestLogs"),
			CORSAllowOrigins:   v.GetStringSlice("server.corsAllowOrigins"),
		},
		Database: DatabaseConfig{
			Engine:  strings.ToLower(v.GetString("database.engine")),
			URI:     v.GetString("database.uri"),
			Name:    v.GetString("database.name"),
			Timeout: v.GetDuration("database.timeout"),
		},
	}
	if conf.BcryptCost < minBcryptCost {
		conf.BcryptCost = minBcryptCost
	}
	return conf
}

// DefaultFromAddress parses DefaultFromEmail, falling back to a bare address.
func (c *Config) DefaultFromAddress() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Address: c.DefaultFromEmail}
	}
	return *addr
}

// NewTestConfig returns a Config suitable for tests: in-memory storage and the lowest bcrypt cost allowed.
func NewTestConfig() *Config {
	return &Config{
		AppName:            "Upskill Global",
		Env:                "TEST",
		Build:              "test",
		TestMode:           true,
		SecretKey:          "secret",
		JWTExpirationDelta: time.Hour,
		BcryptCost:         minBcryptCost,
		FrontendBaseURL:    "http://localhost:3000",
		DefaultFromEmail:   "noreply@localhost",
		Server: ServerConfig{
			Address:            ":0",
			ShutdownTimeout:    time.Second,
			RequestTimeout:     5 * time.Second,
			DisableRequestLogs: true,
			CORSAllowOrigins:   []string{"*"},
		},
		Database: DatabaseConfig{
			Engine:  EngineMemory,
			Name:    "upskill_global_test",
			Timeout: time.Second,
		},
	}
}
