package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Mongo holds the document store configuration.
	Mongo MongoConfig `mapstructure:",squash"`

	// Redis holds the cache configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Auth holds the token verification settings.
	Auth AuthConfig `mapstructure:",squash"`

	// Pricing holds the shipping and tax policy applied at checkout.
	Pricing PricingConfig `mapstructure:",squash"`
}

// MongoConfig holds MongoDB connection details.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string `mapstructure:"MONGO_URI" default:"mongodb://localhost:27017"`
	// Database is the database name holding the shop collections.
	Database string `mapstructure:"MONGO_DATABASE" default:"heroshop"`
	// Timeout bounds connect and ping operations.
	Timeout time.Duration `mapstructure:"MONGO_TIMEOUT" default:"10s"`
}

// RedisConfig holds Redis connection details and key lifetimes.
type RedisConfig struct {
	// URL is the Redis URL, e.g. redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
	// CouponCacheTTL is how long a coupon lookup stays cached.
	CouponCacheTTL time.Duration `mapstructure:"COUPON_CACHE_TTL" default:"5m"`
	// IdempotencyTTL is how long an Idempotency-Key is remembered.
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL" default:"24h"`
	// IdempotencyPendingTTL bounds how long an unfinished request holds its key.
	IdempotencyPendingTTL time.Duration `mapstructure:"IDEMPOTENCY_PENDING_TTL" default:"1m"`
}

// AuthConfig holds the JWT settings.
type AuthConfig struct {
	// JWTSecret is the HMAC key used to verify bearer tokens.
	JWTSecret string `mapstructure:"JWT_SECRET" required:"true"`
}

// PricingConfig holds the checkout pricing policy.
type PricingConfig struct {
	// ShippingFlatFee is charged when the items total is below FreeShippingThreshold.
	ShippingFlatFee float64 `mapstructure:"SHIPPING_FLAT_FEE" default:"10"`
	// FreeShippingThreshold is the items total from which shipping is free.
	FreeShippingThreshold float64 `mapstructure:"FREE_SHIPPING_THRESHOLD" default:"100"`
	// TaxRate is applied to the items total (0.15 = 15%).
	TaxRate float64 `mapstructure:"TAX_RATE" default:"0.15"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags binds every tagged field to its env key and registers its default in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
