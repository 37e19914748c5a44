package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de persistencia soportados.
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	DB        DBConfig
	Firebase  FirebaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Session   SessionConfig
	Operator  OperatorConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Report    ReportConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env            string // development, staging, production
	Name           string
	LogLevel       string
	SwaggerEnabled bool
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig selecciona el backend de empresas, usuarios gestionados y facturas.
type StoreConfig struct {
	Driver string // firestore | postgres
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// FirebaseConfig credenciales del proveedor de identidad y de Firestore.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string // service account JSON (vacío = credenciales por defecto)
	APIKey          string // Web API key para el Identity Toolkit
	RedirectURI     string // continueUri del flujo por redirección
}

// RedisConfig conexión a Redis (sesiones y cola de trabajos).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// SessionConfig tiempos de vida de la sesión.
type SessionConfig struct {
	TTL             time.Duration
	RefreshInterval time.Duration // cada cuánto se recalcula el estado de suscripción
}

// OperatorConfig cuenta de operador con privilegios. La contraseña solo se guarda como hash bcrypt.
type OperatorConfig struct {
	Email        string
	PasswordHash string
	Name         string
}

// Enabled indica si la cuenta de operador está configurada.
func (c OperatorConfig) Enabled() bool {
	return c.Email != "" && c.PasswordHash != ""
}

// RateLimitConfig límites de los endpoints de credenciales.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// JobsConfig programación de trabajos en segundo plano.
type JobsConfig struct {
	ExpirySweepCron string
}

// ReportConfig formato de la exportación PDF de reportes.
type ReportConfig struct {
	Locale   string // etiqueta BCP 47 para el formato de importes
	Currency string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, STORE_DRIVER, REDIS_ADDR, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:            getString(v, "APP_ENV", "development"),
			Name:           getString(v, "APP_NAME", "facture-api"),
			LogLevel:       getString(v, "LOG_LEVEL", "info"),
			SwaggerEnabled: getBool(v, "SWAGGER_ENABLED", true),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getString(v, "STORE_DRIVER", StoreFirestore)),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "facture"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getString(v, "FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getString(v, "FIREBASE_CREDENTIALS_FILE", ""),
			APIKey:          getString(v, "FIREBASE_API_KEY", ""),
			RedirectURI:     getString(v, "FIREBASE_REDIRECT_URI", "http://localhost:5173/auth/callback"),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 720),
			Issuer:     getString(v, "JWT_ISSUER", "facture-api"),
		},
		Session: SessionConfig{
			TTL:             time.Duration(getInt(v, "SESSION_TTL_MINUTES", 720)) * time.Minute,
			RefreshInterval: time.Duration(getInt(v, "SESSION_REFRESH_SECONDS", 300)) * time.Second,
		},
		Operator: OperatorConfig{
			Email:        getString(v, "OPERATOR_EMAIL", ""),
			PasswordHash: getString(v, "OPERATOR_PASSWORD_HASH", ""),
			Name:         getString(v, "OPERATOR_NAME", "Facture Admin"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getInt(v, "LOGIN_RATE_PER_MINUTE", 10),
			Burst:     getInt(v, "LOGIN_RATE_BURST", 5),
		},
		Jobs: JobsConfig{
			ExpirySweepCron: getString(v, "EXPIRY_SWEEP_CRON", "@every 15m"),
		},
		Report: ReportConfig{
			Locale:   getString(v, "REPORT_LOCALE", "fr"),
			Currency: getString(v, "REPORT_CURRENCY", "MAD"),
		},
	}

	return cfg, cfg.Validate()
}

// Validate comprueba los valores obligatorios según el driver elegido.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET es requerido"))
	}
	switch c.Store.Driver {
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID es requerido con STORE_DRIVER=firestore"))
		}
	case StorePostgres:
		if c.DB.DatabaseURL == "" && c.DB.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL o DB_HOST es requerido con STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER desconocido: %q", c.Store.Driver))
	}
	if c.Firebase.APIKey == "" {
		errs = append(errs, errors.New("FIREBASE_API_KEY es requerido para el proveedor de identidad"))
	}
	if (c.Operator.Email == "") != (c.Operator.PasswordHash == "") {
		errs = append(errs, errors.New("OPERATOR_EMAIL y OPERATOR_PASSWORD_HASH deben definirse juntos"))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
