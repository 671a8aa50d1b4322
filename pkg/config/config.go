package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Intents struct {
		// Where trade intents go: "kafka" publishes, "log" only records.
		Backend string `yaml:"backend" default:"log" validate:"oneof=kafka log"`
	} `yaml:"intents"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		BarsTopic    string   `yaml:"bars_topic" default:"market.bars"`
		IntentTopic  string   `yaml:"intent_topic" default:"engine.intents"`
		Compression  string   `yaml:"compression" default:"snappy"`
		RequiredAcks int      `yaml:"required_acks" default:"-1" validate:"gte=-1,lte=1"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"5ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"apexcore"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"250ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"market"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		UseHTTP          bool          `yaml:"use_http"`
	} `yaml:"clickhouse"`
	Feed struct {
		// Source of live bars: "websocket" or "kafka".
		Source         string        `yaml:"source" default:"websocket" validate:"oneof=websocket kafka"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"feed"`
	Status struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl" default:"5m"`
	} `yaml:"status"`
	Instrument struct {
		Symbol    string  `yaml:"symbol" default:"NQ" validate:"required"`
		TickSize  float64 `yaml:"tick_size" default:"0.25" validate:"gt=0"`
		TickValue float64 `yaml:"tick_value" default:"5.0" validate:"gt=0"`
	} `yaml:"instrument"`
	Strategy Strategy `yaml:"strategy"`
}

// Strategy is the full decision-engine parameter set. Ranges mirror the
// calibrated limits each parameter was tuned within.
type Strategy struct {
	Sessions struct {
		Use    bool `yaml:"use" default:"true"`
		Asia   bool `yaml:"asia" default:"true"`
		Europe bool `yaml:"europe" default:"true"`
		NY     bool `yaml:"ny" default:"true"`
	} `yaml:"sessions"`

	TrendTFMinutes int `yaml:"trend_tf_minutes" default:"15" validate:"gte=1,lte=1440"`
	EmaFastLen     int `yaml:"ema_fast_len" default:"21" validate:"gte=1,lte=200"`
	EmaSlowLen     int `yaml:"ema_slow_len" default:"55" validate:"gte=1,lte=200"`
	AtrLen         int `yaml:"atr_len" default:"14" validate:"gte=1,lte=100"`
	AtrDailyLen    int `yaml:"atr_daily_len" default:"14" validate:"gte=1,lte=100"`

	OrMinutes      int     `yaml:"or_minutes" default:"15" validate:"gte=1,lte=120"`
	OrAtrFracTrend float64 `yaml:"or_atr_frac_trend" default:"0.33" validate:"gte=0.01,lte=2"`

	AdxLen        int     `yaml:"adx_len" default:"14" validate:"gte=1,lte=100"`
	AdxMinTrend   float64 `yaml:"adx_min_trend" default:"18" validate:"gte=1,lte=100"`
	EmaSpreadMin  float64 `yaml:"ema_spread_min" default:"0.35" validate:"gte=0.01,lte=5"`
	VwapSlopeMin  float64 `yaml:"vwap_slope_min" default:"0.10" validate:"gte=0.01,lte=2"`
	AllowChopInNY bool    `yaml:"allow_chop_in_ny"`

	BreakBufferTicks int     `yaml:"break_buffer_ticks" default:"2" validate:"gte=0,lte=50"`
	SetupExpiryBars  int     `yaml:"setup_expiry_bars" default:"6" validate:"gte=1,lte=50"`
	UsePullbackVWAP  bool    `yaml:"use_pullback_vwap" default:"true"`
	UsePullbackEMA   bool    `yaml:"use_pullback_ema" default:"true"`
	PullBandATR      float64 `yaml:"pull_band_atr" default:"0.30" validate:"gte=0.01,lte=2"`

	DevMultATR float64 `yaml:"dev_mult_atr" default:"1.10" validate:"gte=0.1,lte=5"`
	RsiLen     int     `yaml:"rsi_len" default:"14" validate:"gte=1,lte=100"`
	RsiLow     float64 `yaml:"rsi_low" default:"35" validate:"gte=1,lte=50"`
	RsiHigh    float64 `yaml:"rsi_high" default:"65" validate:"gte=50,lte=99"`
	ChopTPATR  float64 `yaml:"chop_tp_atr" default:"0.80" validate:"gte=0.1,lte=5"`

	StopMultATR float64 `yaml:"stop_mult_atr" default:"0.85" validate:"gte=0.1,lte=5"`
	TpMultATR   float64 `yaml:"tp_mult_atr" default:"1.20" validate:"gte=0.1,lte=10"`

	MaxSignalsPerSession int `yaml:"max_signals_per_session" default:"4" validate:"gte=1,lte=100"`
	CooldownBars         int `yaml:"cooldown_bars" default:"2" validate:"gte=0,lte=100"`

	Plan struct {
		StartBalance      float64 `yaml:"start_balance" default:"50000" validate:"gt=0"`
		ProfitTarget      float64 `yaml:"profit_target" default:"3000" validate:"gte=0"`
		TrailingThreshold float64 `yaml:"trailing_threshold" default:"2500" validate:"gt=0"`
		DailyLossCap      float64 `yaml:"daily_loss_cap" default:"600" validate:"gte=0,lte=100000"`
		DailyProfitLock   float64 `yaml:"daily_profit_lock" default:"800" validate:"gte=0,lte=100000"`
	} `yaml:"plan"`

	FlattenMinutesBeforeClose int     `yaml:"flatten_minutes_before_close" default:"1" validate:"gte=0,lte=120"`
	MaxConsecutiveLosses      int     `yaml:"max_consecutive_losses" default:"0" validate:"gte=0,lte=20"`
	MaxTrailingDrawdown       float64 `yaml:"max_trailing_drawdown" default:"0" validate:"gte=0,lte=100000"`

	Sizing struct {
		MaxContracts           int     `yaml:"max_contracts" default:"2" validate:"gte=1,lte=100"`
		RiskPerTrade           float64 `yaml:"risk_per_trade" default:"750" validate:"gt=0"`
		RiskPercentOfThreshold float64 `yaml:"risk_percent_of_threshold" default:"0.30" validate:"gt=0,lte=1"`
		AtrStopMultiplier      float64 `yaml:"atr_stop_multiplier" default:"2.5" validate:"gt=0,lte=10"`
	} `yaml:"sizing"`

	Confirm struct {
		WaveTrend           bool    `yaml:"wavetrend" default:"true"`
		VolatilityExpansion bool    `yaml:"volatility_expansion" default:"true"`
		Volume              bool    `yaml:"volume" default:"true"`
		VolumeMAPeriod      int     `yaml:"volume_ma_period" default:"20" validate:"gte=1,lte=200"`
		MinVolumeMultiplier float64 `yaml:"min_volume_multiplier" default:"1.2" validate:"gte=0.1,lte=10"`
		LiquidityZones      bool    `yaml:"liquidity_zones" default:"true"`
	} `yaml:"confirm"`

	WaveTrend struct {
		ChannelLength int     `yaml:"channel_length" default:"10" validate:"gte=1,lte=100"`
		AverageLength int     `yaml:"average_length" default:"21" validate:"gte=1,lte=100"`
		SignalLength  int     `yaml:"signal_length" default:"4" validate:"gte=1,lte=50"`
		Overbought    float64 `yaml:"overbought" default:"60" validate:"gte=0,lte=100"`
		Oversold      float64 `yaml:"oversold" default:"-60" validate:"gte=-100,lte=0"`
	} `yaml:"wavetrend"`

	Bollinger struct {
		Period           int     `yaml:"period" default:"20" validate:"gte=1,lte=200"`
		StdDev           float64 `yaml:"std_dev" default:"2.0" validate:"gt=0,lte=5"`
		Expansion        float64 `yaml:"expansion" default:"2.5" validate:"gt=0,lte=10"`
		SqueezeThreshold float64 `yaml:"squeeze_threshold" default:"0.02" validate:"gt=0,lte=1"`
	} `yaml:"bollinger"`

	Debug bool `yaml:"debug"`
}

var validate = validator.New()

// Load reads a YAML configuration file. Defaults are applied first so that
// explicit zero values in the file survive, then the result is validated.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Instrument.Symbol = v
	}
	if v := os.Getenv("INTENTS_BACKEND"); v != "" {
		c.Intents.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Status.Addr = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks ranges and the cross-field constraints the tags cannot
// express. A config that fails here must never reach the engine.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	s := &c.Strategy
	if s.EmaFastLen >= s.EmaSlowLen {
		return fmt.Errorf("strategy.ema_fast_len (%d) must be below ema_slow_len (%d)", s.EmaFastLen, s.EmaSlowLen)
	}
	if s.RsiLow >= s.RsiHigh {
		return fmt.Errorf("strategy.rsi_low (%v) must be below rsi_high (%v)", s.RsiLow, s.RsiHigh)
	}
	if c.Intents.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with intents.backend=kafka")
	}
	if c.Feed.Source == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with feed.source=kafka")
	}
	if c.Feed.Source == "websocket" && c.Feed.WebSocketURL == "" {
		return fmt.Errorf("feed.websocket_url is required with feed.source=websocket")
	}
	return nil
}
