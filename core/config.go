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

type (
	Config struct {
		AppName         string
		Env             string // DEV (default), TEST, QA, PROD
		Debug           bool
		TestMode        bool
		Build           string
		SecretKey       []byte
		WorkDir         string
		FrontendBaseURL string

		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		PasswordResetTimeoutDelta time.Duration
		// ApplicationWindow is the fixed completion window granted to a new
		// SAR application (applicationEndDate = applicationStartDate + window).
		ApplicationWindow time.Duration

		Server  ServerConfig
		Storage StorageConfig
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	StorageConfig struct {
		// Backend selects the KeyValueStore implementation: inmem | file | postgres
		Backend  string
		FileDir  string
		Database DatabaseConfig
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "CompliEdu")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "x#2v8m)cq5_a&+0u9wz(h7!y4*t3(e6r^$gdk1npj5sbf8lo")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@compliedu.com")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("applicationWindow", 90*24*time.Hour)

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 4*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("storageBackend", "file")
	conf.SetDefault("storageFileDir", "")
	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "compliedu")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseUser", "")
	conf.SetDefault("databasePassword", "")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseDisableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	fileDir := conf.GetString("storageFileDir")
	if fileDir == "" {
		fileDir = filepath.Join(workDir, "data")
	}

	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Build:            conf.GetString("build"),
		SecretKey:        []byte(conf.GetString("secretKey")),
		WorkDir:          workDir,
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		ApplicationWindow:         conf.GetDuration("applicationWindow"),

		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Addr:                      conf.GetString("serverAddr"),
			DebugAddr:                 conf.GetString("serverDebugAddr"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Storage: StorageConfig{
			Backend: conf.GetString("storageBackend"),
			FileDir: fileDir,
			Database: DatabaseConfig{
				Engine:        conf.GetString("databaseEngine"),
				Name:          conf.GetString("databaseName"),
				Host:          conf.GetString("databaseHost"),
				Port:          conf.GetString("databasePort"),
				User:          conf.GetString("databaseUser"),
				Password:      conf.GetString("databasePassword"),
				AdminUser:     conf.GetString("databaseAdminUser"),
				AdminPassword: conf.GetString("databaseAdminPassword"),
				DisableTLS:    conf.GetBool("databaseDisableTLS"),
			},
		},
	}
}
