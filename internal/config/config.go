// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Drive    DriveConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir  string
	LogLevel string
	// Source selects where raw tables are read from: "drive" or "storage".
	Source string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	SnapshotTTLSeconds int
}

// SnapshotTTL returns the snapshot cache lifetime.
func (c CacheConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

type DriveConfig struct {
	CredentialsFile  string
	CredentialsJSON  string
	OrdersFolderID   string
	AdsFolderID      string
	MasterSheetID    string
	MasterWorksheet  string
	FixedWorksheets  []string
	DownloadParallel int
}

type StorageConfig struct {
	Provider  string // sevalla | minio | local
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// LocalDir roots the "local" provider.
	LocalDir string
	// UploadExports pushes each fact CSV export to the bucket.
	UploadExports bool
}

type PipelineConfig struct {
	PercentRule       string
	IncludeFixedCost  bool
	CategoryTagging   bool
	CancelledStatuses []string
	Timezone          string
	ShippingAliases   map[string]string
	ExportCSV         bool
}

// Location resolves the pipeline timezone, falling back to UTC.
func (p PipelineConfig) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()

		// Read from environment variables
		viper.AutomaticEnv()

		instance = build()

		// Ensure data directory exists
		ensureDir(instance.App.DataDir)
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "shopdash")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("APP_DATA_DIR", "./data/output")
	viper.SetDefault("APP_LOG_LEVEL", "info")
	viper.SetDefault("APP_SOURCE", "drive")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_SNAPSHOT_TTL_SECONDS", 600)
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	viper.SetDefault("GOOGLE_CREDENTIALS_JSON", "")
	viper.SetDefault("DRIVE_ORDERS_FOLDER_ID", "")
	viper.SetDefault("DRIVE_ADS_FOLDER_ID", "")
	viper.SetDefault("DRIVE_MASTER_SHEET_ID", "")
	viper.SetDefault("DRIVE_MASTER_WORKSHEET", "MASTER_ITEM")
	viper.SetDefault("DRIVE_FIXED_COST_WORKSHEETS", []string{"FIX_COST", "FIXED_COST"})
	viper.SetDefault("DRIVE_DOWNLOAD_PARALLEL", 4)
	viper.SetDefault("STORAGE_PROVIDER", "sevalla")
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_REGION", "auto")
	viper.SetDefault("STORAGE_BUCKET", "")
	viper.SetDefault("STORAGE_PREFIX", "shopdash")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("STORAGE_UPLOAD_EXPORTS", false)
	viper.SetDefault("STORAGE_LOCAL_DIR", "./data/input")
	viper.SetDefault("PIPELINE_PERCENT_RULE", "always")
	viper.SetDefault("PIPELINE_INCLUDE_FIXED_COST", true)
	viper.SetDefault("PIPELINE_CATEGORY_TAGGING", false)
	viper.SetDefault("PIPELINE_CANCELLED_STATUSES", []string{"ยกเลิก", "Cancelled", "Canceled"})
	viper.SetDefault("PIPELINE_TIMEZONE", "Asia/Bangkok")
	viper.SetDefault("PIPELINE_SHIPPING_ALIASES", "")
	viper.SetDefault("PIPELINE_EXPORT_CSV", true)
}

func build() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Mode:           viper.GetString("SERVER_MODE"),
			ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			DataDir:  viper.GetString("APP_DATA_DIR"),
			LogLevel: viper.GetString("APP_LOG_LEVEL"),
			Source:   strings.ToLower(viper.GetString("APP_SOURCE")),
		},
		Cache: CacheConfig{
			Enabled:            viper.GetBool("CACHE_ENABLED"),
			RedisURL:           viper.GetString("REDIS_URL"),
			RedisHost:          viper.GetString("REDIS_HOST"),
			RedisPort:          viper.GetString("REDIS_PORT"),
			RedisPassword:      viper.GetString("REDIS_PASSWORD"),
			RedisDB:            viper.GetInt("REDIS_DB"),
			SnapshotTTLSeconds: viper.GetInt("CACHE_SNAPSHOT_TTL_SECONDS"),
		},
		Drive: DriveConfig{
			CredentialsFile:  viper.GetString("GOOGLE_CREDENTIALS_FILE"),
			CredentialsJSON:  viper.GetString("GOOGLE_CREDENTIALS_JSON"),
			OrdersFolderID:   viper.GetString("DRIVE_ORDERS_FOLDER_ID"),
			AdsFolderID:      viper.GetString("DRIVE_ADS_FOLDER_ID"),
			MasterSheetID:    viper.GetString("DRIVE_MASTER_SHEET_ID"),
			MasterWorksheet:  viper.GetString("DRIVE_MASTER_WORKSHEET"),
			FixedWorksheets:  viper.GetStringSlice("DRIVE_FIXED_COST_WORKSHEETS"),
			DownloadParallel: viper.GetInt("DRIVE_DOWNLOAD_PARALLEL"),
		},
		Storage: StorageConfig{
			Provider:      strings.ToLower(viper.GetString("STORAGE_PROVIDER")),
			Endpoint:      viper.GetString("STORAGE_ENDPOINT"),
			Region:        viper.GetString("STORAGE_REGION"),
			Bucket:        viper.GetString("STORAGE_BUCKET"),
			Prefix:        viper.GetString("STORAGE_PREFIX"),
			AccessKey:     viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:     viper.GetString("STORAGE_SECRET_KEY"),
			UseSSL:        viper.GetBool("STORAGE_USE_SSL"),
			LocalDir:      viper.GetString("STORAGE_LOCAL_DIR"),
			UploadExports: viper.GetBool("STORAGE_UPLOAD_EXPORTS"),
		},
		Pipeline: PipelineConfig{
			PercentRule:       viper.GetString("PIPELINE_PERCENT_RULE"),
			IncludeFixedCost:  viper.GetBool("PIPELINE_INCLUDE_FIXED_COST"),
			CategoryTagging:   viper.GetBool("PIPELINE_CATEGORY_TAGGING"),
			CancelledStatuses: viper.GetStringSlice("PIPELINE_CANCELLED_STATUSES"),
			Timezone:          viper.GetString("PIPELINE_TIMEZONE"),
			ShippingAliases:   parseAliases(viper.GetString("PIPELINE_SHIPPING_ALIASES")),
			ExportCSV:         viper.GetBool("PIPELINE_EXPORT_CSV"),
		},
	}
}

// parseAliases reads "Raw Label=Rate Column;Other=Column" pairs.
func parseAliases(raw string) map[string]string {
	aliases := make(map[string]string)
	for _, pair := range strings.Split(raw, ";") {
		label, column, ok := strings.Cut(pair, "=")
		label, column = strings.TrimSpace(label), strings.TrimSpace(column)
		if !ok || label == "" || column == "" {
			continue
		}
		aliases[label] = column
	}
	return aliases
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
