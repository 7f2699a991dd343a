package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	RPGMaker  RPGMakerConfig  `mapstructure:"rpgmaker"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	LootBag   LootBagConfig   `mapstructure:"lootbag"`
	Security  SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type RPGMakerConfig struct {
	DataPath string `mapstructure:"data_path"` // directory holding Items.json, Weapons.json, Armors.json
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
	SnapshotTTL     time.Duration `mapstructure:"snapshot_ttl"`
}

// InventoryConfig shapes player backpacks.
type InventoryConfig struct {
	SlotsPerRow     int     `mapstructure:"slots_per_row"`
	InitialRows     int     `mapstructure:"initial_rows"`
	MaxRows         int     `mapstructure:"max_rows"`
	UpgradeItemID   int     `mapstructure:"upgrade_item_id"` // 0 = upgrades are free
	UpgradeAmount   int     `mapstructure:"upgrade_amount"`
	MergeDistance   float64 `mapstructure:"merge_distance"`
	DefaultMaxStack int     `mapstructure:"default_max_stack"` // used when an item has no <MaxStack> notetag
	SaveIntervalS   int     `mapstructure:"save_interval_s"`
}

// LootBagConfig shapes the world containers spawned for dropped items.
type LootBagConfig struct {
	SlotsPerRow    int     `mapstructure:"slots_per_row"`
	Rows           int     `mapstructure:"rows"`
	LifetimeS      int     `mapstructure:"lifetime_s"`
	SpawnOffset    float64 `mapstructure:"spawn_offset"`
	SweepIntervalS int     `mapstructure:"sweep_interval_s"`
}

type SecurityConfig struct {
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	AdminIPs       []string `mapstructure:"admin_ips"` // IPs or CIDRs allowed on /api/admin; empty allows all
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("rpgmaker.data_path", "./data")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/inventory.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.key_prefix", "lootgrid:")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("cache.snapshot_ttl", "10m")
	v.SetDefault("inventory.slots_per_row", 5)
	v.SetDefault("inventory.initial_rows", 1)
	v.SetDefault("inventory.max_rows", 5)
	v.SetDefault("inventory.upgrade_item_id", 0)
	v.SetDefault("inventory.upgrade_amount", 1)
	v.SetDefault("inventory.merge_distance", 500)
	v.SetDefault("inventory.default_max_stack", 99)
	v.SetDefault("inventory.save_interval_s", 300)
	v.SetDefault("lootbag.slots_per_row", 5)
	v.SetDefault("lootbag.rows", 1)
	v.SetDefault("lootbag.lifetime_s", 300)
	v.SetDefault("lootbag.spawn_offset", 200)
	v.SetDefault("lootbag.sweep_interval_s", 30)
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)
}
