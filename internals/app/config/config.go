package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/viper"
)

const defaultSecretName = "mercado/prod/marketplace/env"

type Config struct {
	PORT      string `mapstructure:"PORT" json:"PORT"`
	GRPC_PORT string `mapstructure:"GRPC_PORT" json:"GRPC_PORT"`
	DB_URL    string `mapstructure:"DB_URL" json:"DB_URL"`
	LOG_LEVEL string `mapstructure:"LOG_LEVEL" json:"LOG_LEVEL"`

	JWT_SECRET    string `mapstructure:"JWT_SECRET" json:"JWT_SECRET"`
	JWT_TTL_HOURS int    `mapstructure:"JWT_TTL_HOURS" json:"JWT_TTL_HOURS"`

	CLOUD_NAME    string `mapstructure:"CLOUD_NAME" json:"CLOUD_NAME"`
	CLOUD_API_KEY string `mapstructure:"CLOUD_API_KEY" json:"CLOUD_API_KEY"`
	CLOUD_SECRET  string `mapstructure:"CLOUD_SECRET" json:"CLOUD_SECRET"`
	CLOUD_FOLDER  string `mapstructure:"CLOUD_FOLDER" json:"CLOUD_FOLDER"`

	FIREBASE_CREDENTIALS_FILE string `mapstructure:"FIREBASE_CREDENTIALS_FILE" json:"FIREBASE_CREDENTIALS_FILE"`

	GROQ_API_KEY  string `mapstructure:"GROQ_API_KEY" json:"GROQ_API_KEY"`
	GROQ_MODEL    string `mapstructure:"GROQ_MODEL" json:"GROQ_MODEL"`
	GROQ_BASE_URL string `mapstructure:"GROQ_BASE_URL" json:"GROQ_BASE_URL"`

	FACEBOOK_PAGE_ID    string `mapstructure:"FACEBOOK_PAGE_ID" json:"FACEBOOK_PAGE_ID"`
	FACEBOOK_PAGE_TOKEN string `mapstructure:"FACEBOOK_PAGE_TOKEN" json:"FACEBOOK_PAGE_TOKEN"`
	FACEBOOK_GRAPH_URL  string `mapstructure:"FACEBOOK_GRAPH_URL" json:"FACEBOOK_GRAPH_URL"`

	STRIPE_SECRET_KEY     string `mapstructure:"STRIPE_SECRET_KEY" json:"STRIPE_SECRET_KEY"`
	STRIPE_WEBHOOK_SECRET string `mapstructure:"STRIPE_WEBHOOK_SECRET" json:"STRIPE_WEBHOOK_SECRET"`
	STRIPE_SUCCESS_URL    string `mapstructure:"STRIPE_SUCCESS_URL" json:"STRIPE_SUCCESS_URL"`
	STRIPE_CANCEL_URL     string `mapstructure:"STRIPE_CANCEL_URL" json:"STRIPE_CANCEL_URL"`
	FEATURED_PRICE_CENTS  int64  `mapstructure:"FEATURED_PRICE_CENTS" json:"FEATURED_PRICE_CENTS"`
	FEATURED_CURRENCY     string `mapstructure:"FEATURED_CURRENCY" json:"FEATURED_CURRENCY"`
	FEATURED_DAYS         int    `mapstructure:"FEATURED_DAYS" json:"FEATURED_DAYS"`

	REDIS_URL string `mapstructure:"REDIS_URL" json:"REDIS_URL"`

	MAX_ACTIVE_CLASSIFIEDS int `mapstructure:"MAX_ACTIVE_CLASSIFIEDS" json:"MAX_ACTIVE_CLASSIFIEDS"`
	CLASSIFIED_DAYS        int `mapstructure:"CLASSIFIED_DAYS" json:"CLASSIFIED_DAYS"`

	RATE_LIMIT_RPS   int    `mapstructure:"RATE_LIMIT_RPS" json:"RATE_LIMIT_RPS"`
	RATE_LIMIT_BURST int    `mapstructure:"RATE_LIMIT_BURST" json:"RATE_LIMIT_BURST"`
	PUBLIC_BASE_URL  string `mapstructure:"PUBLIC_BASE_URL" json:"PUBLIC_BASE_URL"`
	ALLOWED_ORIGINS  string `mapstructure:"ALLOWED_ORIGINS" json:"ALLOWED_ORIGINS"`

	SECRET_NAME string `mapstructure:"SECRET_NAME" json:"SECRET_NAME"`
}

var defaults = map[string]interface{}{
	"PORT":                   "8080",
	"GRPC_PORT":              "5002",
	"LOG_LEVEL":              "info",
	"JWT_TTL_HOURS":          72,
	"CLOUD_FOLDER":           "mercado",
	"GROQ_MODEL":             "llama-3.1-8b-instant",
	"GROQ_BASE_URL":          "https://api.groq.com/openai/v1",
	"FACEBOOK_GRAPH_URL":     "https://graph.facebook.com/v19.0",
	"FEATURED_PRICE_CENTS":   9900,
	"FEATURED_CURRENCY":      "mxn",
	"FEATURED_DAYS":          30,
	"MAX_ACTIVE_CLASSIFIEDS": 3,
	"CLASSIFIED_DAYS":        30,
	"RATE_LIMIT_RPS":         10,
	"RATE_LIMIT_BURST":       20,
	"PUBLIC_BASE_URL":        "http://localhost:8080",
	"ALLOWED_ORIGINS":        "*",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()
	bindEnv(v)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func LoadConfig() (cfg Config, err error) {
	v := newViper()

	paths := []string{".env", "../.env", "/app/.env"}
	loaded := false

	for _, path := range paths {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err == nil {
			log.Printf("Loaded configuration from %s", path)
			loaded = true
			break
		} else {
			log.Printf("Failed to load %s: %v", path, err)
		}
	}

	if loaded || os.Getenv("DB_URL") != "" {
		if err = v.Unmarshal(&cfg); err != nil {
			log.Printf("Failed to unmarshal config from env: %v", err)
			return cfg, err
		}
		return cfg, nil
	}

	log.Println("Falling back to AWS Secrets Manager for configuration")
	secretName := os.Getenv("SECRET_NAME")
	if secretName == "" {
		secretName = defaultSecretName
	}
	log.Printf("Using secret name: %s", secretName)

	secret, err := fetchSecret(secretName)
	if err != nil {
		log.Printf("Failed to load config from Secrets Manager: %v", err)
		return cfg, err
	}
	if err = mergeSecret(v, secret); err != nil {
		return cfg, err
	}
	if err = v.Unmarshal(&cfg); err != nil {
		log.Printf("Failed to unmarshal config from Secrets Manager: %v", err)
		return cfg, err
	}
	return cfg, nil
}

// bindEnv registers every key so Unmarshal sees environment values that have no default.
func bindEnv(v *viper.Viper) {
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if key := t.Field(i).Tag.Get("mapstructure"); key != "" {
			_ = v.BindEnv(key)
		}
	}
}

func fetchSecret(secretName string) (string, error) {
	ctx := context.TODO()

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}

	client := secretsmanager.NewFromConfig(awsCfg)

	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(result.SecretString), nil
}

// mergeSecret layers a key/value secret over the defaults. Secrets Manager stores
// every value as a string; viper's weak decoding turns "72" into the int fields.
func mergeSecret(v *viper.Viper, secret string) error {
	var values map[string]interface{}
	if err := json.Unmarshal([]byte(secret), &values); err != nil {
		return fmt.Errorf("failed to decode secret: %w", err)
	}
	return v.MergeConfigMap(values)
}

func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.ALLOWED_ORIGINS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) StripeEnabled() bool {
	return c.STRIPE_SECRET_KEY != ""
}

func (c Config) FacebookEnabled() bool {
	return c.FACEBOOK_PAGE_ID != "" && c.FACEBOOK_PAGE_TOKEN != ""
}
