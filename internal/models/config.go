package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// PromoRule is one row of the declarative promo-code table evaluated by the
// pricing engine. Percent applies to the basis, capped at MaxDiscount when
// MaxDiscount > 0. Basis "bill" means subtotal+fees+taxes, anything else
// means subtotal. FreeDelivery rules discount exactly the delivery fee.
type PromoRule struct {
	Code         string  `mapstructure:"code"`
	Percent      float64 `mapstructure:"percent"`
	MaxDiscount  int64   `mapstructure:"max_discount"`
	Basis        string  `mapstructure:"basis"`
	FreeDelivery bool    `mapstructure:"free_delivery"`
	Description  string  `mapstructure:"description"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type KafkaConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BrokerList       string `mapstructure:"broker_list"`
	TopicPrefix      string `mapstructure:"topic_prefix"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type PricingConfig struct {
	DeliveryFee    int64       `mapstructure:"delivery_fee"`     // flat, rupees
	TaxRate        float64     `mapstructure:"tax_rate"`         // e.g. 0.05
	PointsPerRupee int64       `mapstructure:"points_per_rupee"` // redemption: 10 points = 1 rupee
	RupeesPerPoint int64       `mapstructure:"rupees_per_point"` // accrual: 1 point per 10 rupees
	Promos         []PromoRule `mapstructure:"promos"`
}

type AssignmentConfig struct {
	DeliveryPayout int64 `mapstructure:"delivery_payout"` // flat per-delivery driver fee, rupees
}

type WorkerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type ExportConfig struct {
	OutputPath   string             `mapstructure:"output_path"`
	OutputFolder string             `mapstructure:"output_folder"`
	Destination  string             `mapstructure:"destination"` // "local" or "cloud"
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
}

type SeedConfig struct {
	Restaurants       int `mapstructure:"restaurants"`
	MenuItemsPerPlace int `mapstructure:"menu_items_per_place"`
	Drivers           int `mapstructure:"drivers"`
	Customers         int `mapstructure:"customers"`
}

type Config struct {
	CityName    string  `mapstructure:"city_name"`
	CityLat     float64 `mapstructure:"city_latitude"`
	CityLon     float64 `mapstructure:"city_longitude"`
	UrbanRadius float64 `mapstructure:"urban_radius"` // km

	Database   DatabaseConfig   `mapstructure:"database"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Assignment AssignmentConfig `mapstructure:"assignment"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Export     ExportConfig     `mapstructure:"export"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

// DefaultPromos is the built-in promo table observed in production. Config
// may extend or override it, including staff codes.
func DefaultPromos() []PromoRule {
	return []PromoRule{
		{Code: "FIRST50", Percent: 0.5, MaxDiscount: 100, Description: "50% off up to Rs 100 on first order"},
		{Code: "FREEDEL", FreeDelivery: true, Description: "Free delivery"},
		{Code: "SAVE20", Percent: 0.2, MaxDiscount: 80, Description: "20% off up to Rs 80"},
		{Code: "FORYOU20", Percent: 0.2, MaxDiscount: 100, Description: "Personalized 20% off"},
	}
}

func setDefaults() {
	viper.SetDefault("city_name", "Bangalore")
	viper.SetDefault("city_latitude", 12.9716)
	viper.SetDefault("city_longitude", 77.5946)
	viper.SetDefault("urban_radius", 10.0)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "smarteats")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.broker_list", "localhost:9092")
	viper.SetDefault("kafka.topic_prefix", "smarteats")

	viper.SetDefault("pricing.delivery_fee", 30)
	viper.SetDefault("pricing.tax_rate", 0.05)
	viper.SetDefault("pricing.points_per_rupee", 10)
	viper.SetDefault("pricing.rupees_per_point", 10)

	viper.SetDefault("assignment.delivery_payout", 50)

	viper.SetDefault("worker.poll_interval", "30s")

	viper.SetDefault("export.output_path", "output")
	viper.SetDefault("export.output_folder", "order_archive")
	viper.SetDefault("export.destination", "local")

	viper.SetDefault("seed.restaurants", 25)
	viper.SetDefault("seed.menu_items_per_place", 12)
	viper.SetDefault("seed.drivers", 40)
	viper.SetDefault("seed.customers", 200)
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if len(config.Pricing.Promos) == 0 {
		config.Pricing.Promos = DefaultPromos()
	}

	return &config, nil
}
