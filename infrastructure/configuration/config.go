package configuration

import (
	"fmt"
	"os"
	"strconv"

	"social-hub/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Media       Media       `json:"media"`
	OAuth       OAuth       `json:"oauth"`
}

type App struct {
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	SecretKey   string `json:"secretKey"`
	SettingsURL string `json:"settingsURL"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

// Media describes the object store bucket holding uploaded media files.
type Media struct {
	Bucket string `json:"bucket"`
}

// OAuth holds third-party platform OAuth client credentials.
type OAuth struct {
	YouTube  OAuthClient `json:"youtube"`
	Facebook OAuthClient `json:"facebook"`
	X        OAuthClient `json:"x"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initOAuth(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}

	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = getEnv("MONGO_HOST", "localhost")
	}
	if C.Database.Mongo.Port == "" {
		C.Database.Mongo.Port = getEnv("MONGO_PORT", "27017")
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = getEnv("MONGO_DB_NAME", "social_hub")
	}
	if C.Database.Mongo.User == "" {
		C.Database.Mongo.User = os.Getenv("MONGO_USER")
	}
	if C.Database.Mongo.Password == "" {
		C.Database.Mongo.Password = os.Getenv("MONGO_PASSWORD")
	}

	// Optional MSSQL config via environment variables (Azure SQL in production)
	if v := os.Getenv("MSSQL_DB_NAME"); v != "" && C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = v
	}
	if v := os.Getenv("MSSQL_HOST"); v != "" && C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = v
	}
	if v := os.Getenv("MSSQL_USER"); v != "" && C.Database.Mssql.User == "" {
		C.Database.Mssql.User = v
	}
	if v := os.Getenv("MSSQL_PASSWORD"); v != "" && C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = v
	}
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = getEnv("MSSQL_PORT", "1433")
	}
}

func initApp(C *Config) {
	if C.App.Environment == "" {
		C.App.Environment = getEnv("ENV", "local")
	}
	// SECRET_KEY from environment overrides config when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order: APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if C.App.SettingsURL == "" {
		C.App.SettingsURL = getEnv("SETTINGS_URL", "/settings/connections")
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initOAuth(C *Config) {
	scheme := "http"
	if C.App.TLSEnabled {
		scheme = "https"
	}
	defaultRedirect := func(platform string) string {
		return fmt.Sprintf("%s://localhost:%d/connect/%s/callback", scheme, C.App.Port, platform)
	}
	C.OAuth.YouTube = OAuthClient{
		ClientID:     getConfigValue(C.OAuth.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.OAuth.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RedirectURI:  getConfigValue(C.OAuth.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", defaultRedirect("youtube")),
	}
	C.OAuth.Facebook = OAuthClient{
		ClientID:     getConfigValue(C.OAuth.Facebook.ClientID, "FACEBOOK_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.OAuth.Facebook.ClientSecret, "FACEBOOK_CLIENT_SECRET", ""),
		RedirectURI:  getConfigValue(C.OAuth.Facebook.RedirectURI, "FACEBOOK_REDIRECT_URL", defaultRedirect("facebook")),
	}
	C.OAuth.X = OAuthClient{
		ClientID:     getConfigValue(C.OAuth.X.ClientID, "X_CLIENT_ID", ""),
		ClientSecret: getConfigValue(C.OAuth.X.ClientSecret, "X_CLIENT_SECRET", ""),
		RedirectURI:  getConfigValue(C.OAuth.X.RedirectURI, "X_REDIRECT_URL", defaultRedirect("x")),
	}
	if C.Media.Bucket == "" {
		C.Media.Bucket = getEnv("MEDIA_BUCKET", "")
	}
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = getEnv("PUBSUB_TOPIC", "content-published")
	}
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = getEnv("SERVICEBUS_QUEUE", "content-published")
	}
}

// getConfigValue gets value from environment first, then config, then default.
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDevelopment reports whether the app runs in a local/dev environment.
// The connect-state cookie drops its Secure flag only in this mode.
func IsDevelopment() bool {
	switch C.App.Environment {
	case "", "local", "dev", "development":
		return true
	}
	return false
}
