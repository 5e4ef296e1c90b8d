package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/vfg2006/covid-insights/pkg/utils"
)

const (
	MissingPolicyDrop  = "drop"
	MissingPolicyFFill = "ffill"
)

type Config struct {
	App      App      `mapstructure:",squash"`
	Source   Source   `mapstructure:",squash"`
	Cleaning Cleaning `mapstructure:",squash"`
	Analysis Analysis `mapstructure:",squash"`
	Output   Output   `mapstructure:",squash"`
	Database Database `mapstructure:",squash"`
	Storage  Storage  `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Source struct {
	InputPath       string        `mapstructure:"input_path"`
	URLs            []string      `mapstructure:"source_urls"`
	BackupPath      string        `mapstructure:"backup_path"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	Delimiter       string        `mapstructure:"csv_delimiter"`
}

type Cleaning struct {
	Countries     []string   `mapstructure:"countries"`
	StartDateRaw  string     `mapstructure:"start_date"`
	EndDateRaw    string     `mapstructure:"end_date"`
	MissingPolicy string     `mapstructure:"missing_policy"`
	StartDate     *time.Time `mapstructure:"-"`
	EndDate       *time.Time `mapstructure:"-"`
}

type Analysis struct {
	RollingWindow int `mapstructure:"rolling_window"`
}

type Output struct {
	Dir           string `mapstructure:"output_dir"`
	ReportDir     string `mapstructure:"report_dir"`
	ChartWidth    int    `mapstructure:"chart_width"`
	ChartHeight   int    `mapstructure:"chart_height"`
	ExportEnabled bool   `mapstructure:"export_enabled"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Table    string `mapstructure:"database_table"`
}

type Storage struct {
	Enabled   bool   `mapstructure:"storage_enabled"`
	Endpoint  string `mapstructure:"storage_endpoint"`
	AccessKey string `mapstructure:"storage_access_key"`
	SecretKey string `mapstructure:"storage_secret_key"`
	Bucket    string `mapstructure:"storage_bucket"`
	Prefix    string `mapstructure:"storage_prefix"`
	Region    string `mapstructure:"storage_region"`
	UseSSL    bool   `mapstructure:"storage_use_ssl"`
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("INPUT_PATH", "")
	viper.SetDefault("SOURCE_URLS", []string{
		"https://covid.ourworldindata.org/data/owid-covid-data.csv",
		"https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/owid-covid-data.csv",
	})
	viper.SetDefault("BACKUP_PATH", "local_backup/owid-covid-data.csv")
	viper.SetDefault("DOWNLOAD_TIMEOUT", "2m")
	viper.SetDefault("CSV_DELIMITER", ",")

	// Países da análise de referência
	viper.SetDefault("COUNTRIES", []string{
		"Kenya", "United States", "India", "Brazil",
		"United Kingdom", "Germany", "South Africa",
	})
	viper.SetDefault("START_DATE", "")
	viper.SetDefault("END_DATE", "")
	viper.SetDefault("MISSING_POLICY", MissingPolicyFFill)

	viper.SetDefault("ROLLING_WINDOW", 7)

	viper.SetDefault("OUTPUT_DIR", "visualizations")
	viper.SetDefault("REPORT_DIR", "output")
	viper.SetDefault("CHART_WIDTH", 1400)
	viper.SetDefault("CHART_HEIGHT", 700)
	viper.SetDefault("EXPORT_ENABLED", true)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/covid?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_TABLE", "covid_records")

	viper.SetDefault("STORAGE_ENABLED", false)
	viper.SetDefault("STORAGE_ENDPOINT", "http://localhost:9000")
	viper.SetDefault("STORAGE_ACCESS_KEY", "")
	viper.SetDefault("STORAGE_SECRET_KEY", "")
	viper.SetDefault("STORAGE_BUCKET", "covid-insights")
	viper.SetDefault("STORAGE_PREFIX", "runs")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", false)
}

func NewConfig() (*Config, error) {
	// Carrega o .env antes do viper para que as variáveis já estejam no ambiente
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando apenas variáveis de ambiente (viper não conseguiu ler .env): ", err)
	} else {
		logrus.Debug("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.resolve(); err != nil {
		return nil, err
	}

	return config, nil
}

// resolve normaliza os campos derivados depois do unmarshal
func (c *Config) resolve() error {
	c.Cleaning.Countries = trimAll(c.Cleaning.Countries)
	c.Source.URLs = trimAll(c.Source.URLs)
	c.Cleaning.MissingPolicy = strings.ToLower(strings.TrimSpace(c.Cleaning.MissingPolicy))

	if c.Cleaning.StartDateRaw != "" {
		start, err := utils.ParseDate(c.Cleaning.StartDateRaw)
		if err != nil {
			return NewConfigError("START_DATE", c.Cleaning.StartDateRaw, "data deve estar no formato AAAA-MM-DD")
		}
		c.Cleaning.StartDate = start
	}

	if c.Cleaning.EndDateRaw != "" {
		end, err := utils.ParseDate(c.Cleaning.EndDateRaw)
		if err != nil {
			return NewConfigError("END_DATE", c.Cleaning.EndDateRaw, "data deve estar no formato AAAA-MM-DD")
		}
		c.Cleaning.EndDate = end
	}

	if len([]rune(c.Source.Delimiter)) != 1 {
		return NewConfigError("CSV_DELIMITER", c.Source.Delimiter, "delimitador deve ter exatamente um caractere")
	}

	if c.Analysis.RollingWindow < 1 {
		return NewConfigError("ROLLING_WINDOW", fmt.Sprint(c.Analysis.RollingWindow), "janela deve ser maior que zero")
	}

	c.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		c.Database.Driver,
		c.Database.User,
		c.Database.Password,
		c.Database.URL,
	)

	return nil
}

// Sources retorna a cadeia de fontes na ordem em que devem ser tentadas
func (c *Config) Sources() []string {
	sources := make([]string, 0, len(c.Source.URLs)+2)
	if c.Source.InputPath != "" {
		sources = append(sources, c.Source.InputPath)
	}
	sources = append(sources, c.Source.URLs...)
	if c.Source.BackupPath != "" && c.Source.BackupPath != c.Source.InputPath {
		sources = append(sources, c.Source.BackupPath)
	}
	return sources
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// loadEnvFile procura um arquivo .env no diretório atual e nos diretórios acima
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
