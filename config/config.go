package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sisu-network/sentinel/types"
)

const (
	DbDriverMysql    = "mysql"
	DbDriverPostgres = "postgres"
	DbDriverSqlite   = "sqlite3"

	ExplorerBlockchair = "blockchair"
	ExplorerInsight    = "insight"
	ExplorerBlockfrost = "blockfrost"
)

// Duration is a time.Duration that reads from strings like "90m" in toml files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// FeeRegime is a set of release fee rules used by the burn verifier for burns made after Since.
type FeeRegime struct {
	Since time.Time `toml:"since"`
	// Fixed fees that were charged regardless of the transaction shape.
	Fixed []int64 `toml:"fixed"`
	// Proportional enables the tx fee / (outputs - 1 + inputs - 1) rule when the explorer reports
	// the transaction shape.
	Proportional bool `toml:"proportional"`
}

type Explorer struct {
	Kind     string `toml:"kind"`
	Url      string `toml:"url"`
	ApiKey   string `toml:"api_key"`
	PageSize int    `toml:"page_size"`
	MaxPages int    `toml:"max_pages"`
}

type Chain struct {
	Chain   string   `toml:"chain"`
	Family  string   `toml:"family"`
	Testnet bool     `toml:"testnet"`
	Rpcs    []string `toml:"rpcs"`

	// Assets that are native to this chain, i.e. this chain is their origin.
	NativeAssets []string `toml:"native_assets"`
	// Decimals of every asset this chain knows about.
	Decimals map[string]int `toml:"decimals"`
	// Asset symbol (e.g. "renBTC") to gateway contract or program address.
	Gateways map[string]string `toml:"gateways"`

	StartState         string   `toml:"start_state"`
	ConfirmationOffset int64    `toml:"confirmation_offset"`
	MaxConfirmations   int64    `toml:"max_confirmations"`
	LogRequestLimit    int64    `toml:"log_request_limit"`
	ProbeConcurrency   int      `toml:"probe_concurrency"`
	ProbeTimeout       Duration `toml:"probe_timeout"`

	// Format string with one %s for the tx hash.
	TxExplorerLink string `toml:"tx_explorer_link"`

	Explorer   Explorer    `toml:"explorer"`
	FeeRegimes []FeeRegime `toml:"fee_regimes"`
}

// AssetDecimals returns the decimals of an asset known by the chain.
func (c Chain) AssetDecimals(asset string) (int, error) {
	if decimals, ok := c.Decimals[asset]; ok {
		return decimals, nil
	}

	return 0, fmt.Errorf("unknown asset %s on %s", asset, c.Chain)
}

// ExplorerLink returns the block explorer url of a transaction or "" when none is configured.
func (c Chain) ExplorerLink(hash string) string {
	if !strings.Contains(c.TxExplorerLink, "%s") {
		return ""
	}

	return fmt.Sprintf(c.TxExplorerLink, hash)
}

type Sentinel struct {
	Network string `toml:"network"`

	DbDriver   string `toml:"db_driver"`
	DbHost     string `toml:"db_host"`
	DbPort     int    `toml:"db_port"`
	DbUsername string `toml:"db_username"`
	DbPassword string `toml:"db_password"`
	DbSchema   string `toml:"db_schema"`
	InMemory   bool   `toml:"in_memory"`

	ServerPort   int    `toml:"server_port"`
	LightnodeUrl string `toml:"lightnode_url"`
	WebhookUrl   string `toml:"webhook_url"`
	SentryDsn    string `toml:"sentry_dsn"`

	// Format string with one %s for the signing network tx hash.
	SigningExplorerLink string `toml:"signing_explorer_link"`

	TickInterval      Duration `toml:"tick_interval"`
	SyncTimeout       Duration `toml:"sync_timeout"`
	SubmitTimeout     Duration `toml:"submit_timeout"`
	SubmitConcurrency int      `toml:"submit_concurrency"`
	RateLimitPause    Duration `toml:"rate_limit_pause"`

	EscalationDelay       Duration `toml:"escalation_delay"`
	VerifyEscalationDelay Duration `toml:"verify_escalation_delay"`
	DustThreshold         int64    `toml:"dust_threshold"`
	EnableVerification    bool     `toml:"enable_verification"`

	Chains map[string]Chain `toml:"chains"`
}

// Default returns the config written on first start, before any chain is configured.
func Default() *Sentinel {
	cfg := &Sentinel{
		Network:      "mainnet",
		DbHost:       "localhost",
		DbPort:       3306,
		DbUsername:   "root",
		DbSchema:     "sentinel",
		ServerPort:   25456,
		LightnodeUrl: "https://lightnode-mainnet.herokuapp.com",
		Chains:       make(map[string]Chain),
	}
	cfg.SetDefaults()

	return cfg
}

// Load reads a toml config file, applies environment overrides and fills in defaults.
func Load(path string) (*Sentinel, error) {
	cfg := &Sentinel{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config %s: %w", path, err)
	}

	if v := os.Getenv("SENTINEL_DB_PASSWORD"); v != "" {
		cfg.DbPassword = v
	}
	if v := os.Getenv("SENTINEL_WEBHOOK"); v != "" {
		cfg.WebhookUrl = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.SentryDsn = v
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Sentinel) SetDefaults() {
	if c.DbDriver == "" {
		c.DbDriver = DbDriverMysql
	}
	if c.TickInterval.Duration == 0 {
		c.TickInterval.Duration = time.Minute
	}
	if c.SyncTimeout.Duration == 0 {
		c.SyncTimeout.Duration = 5 * time.Minute
	}
	if c.SubmitTimeout.Duration == 0 {
		c.SubmitTimeout.Duration = 30 * time.Second
	}
	if c.SubmitConcurrency <= 0 {
		c.SubmitConcurrency = 5
	}
	if c.RateLimitPause.Duration == 0 {
		c.RateLimitPause.Duration = time.Second
	}
	if c.EscalationDelay.Duration == 0 {
		c.EscalationDelay.Duration = 60 * time.Minute
	}
	if c.VerifyEscalationDelay.Duration == 0 {
		c.VerifyEscalationDelay.Duration = 90 * time.Minute
	}
	if c.DustThreshold == 0 {
		c.DustThreshold = 10000
	}

	for name, chain := range c.Chains {
		if chain.Chain == "" {
			chain.Chain = name
		}
		if chain.ConfirmationOffset == 0 {
			chain.ConfirmationOffset = 5
		}
		if chain.MaxConfirmations == 0 {
			// One day of 10 second blocks.
			chain.MaxConfirmations = 6 * 60 * 24
		}
		if chain.LogRequestLimit == 0 {
			chain.LogRequestLimit = 100000
		}
		if chain.ProbeConcurrency == 0 {
			chain.ProbeConcurrency = 3
		}
		if chain.ProbeTimeout.Duration == 0 {
			chain.ProbeTimeout.Duration = 10 * time.Second
		}
		if chain.Explorer.MaxPages == 0 {
			chain.Explorer.MaxPages = 100
		}
		c.Chains[name] = chain
	}
}

func (c *Sentinel) Validate() error {
	switch c.DbDriver {
	case DbDriverMysql, DbDriverPostgres, DbDriverSqlite:
	default:
		return fmt.Errorf("unknown db driver %s", c.DbDriver)
	}

	for name, chain := range c.Chains {
		switch types.Family(chain.Family) {
		case types.FamilyEvm, types.FamilySolana:
			if len(chain.Rpcs) == 0 {
				return fmt.Errorf("chain %s has no rpcs", name)
			}
		case types.FamilyUtxo, types.FamilyCardano:
		default:
			return fmt.Errorf("chain %s has unknown family %q", name, chain.Family)
		}
	}

	return nil
}
