/**
 * @description
 * This package handles configuration management for the terminal. It uses
 * the Viper library to read settings from environment variables, providing
 * a centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 *
 * @notes
 * - Technician credentials are deliberately configuration, never code
 *   constants: each deployed terminal carries its own.
 */

package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingTechnicianCredentials is returned when the terminal is started
// without TECHNICIAN_ID and TECHNICIAN_SECRET set.
var ErrMissingTechnicianCredentials = errors.New("TECHNICIAN_ID and TECHNICIAN_SECRET must be set")

// Config holds all the configuration variables for the terminal.
// These values are loaded from environment variables.
type Config struct {
	TerminalID           string `mapstructure:"TERMINAL_ID"`
	TechnicianID         string `mapstructure:"TECHNICIAN_ID"`
	TechnicianSecret     string `mapstructure:"TECHNICIAN_SECRET"`
	StateFile            string `mapstructure:"STATE_FILE"`
	JournalFile          string `mapstructure:"JOURNAL_FILE"`
	VaultInitialEuros    int64  `mapstructure:"VAULT_INITIAL_EUROS"`
	PaperCostPerPrint    int    `mapstructure:"PAPER_COST_PER_PRINT"`
	InkCostPerPrint      int    `mapstructure:"INK_COST_PER_PRINT"`
	SupplyLowThreshold   int    `mapstructure:"SUPPLY_LOW_THRESHOLD"`
	AllowAutoRegister    bool   `mapstructure:"ALLOW_AUTO_REGISTER"`
	StateSyncSchedule    string `mapstructure:"STATE_SYNC_SCHEDULE"`
	SupplyReportSchedule string `mapstructure:"SUPPLY_REPORT_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables.
// It uses Viper to automatically bind environment variables to the Config
// struct, applies defaults, and coerces out-of-range values into the
// ranges the device can actually operate with.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("TERMINAL_ID", "ATM-0001")
	viper.SetDefault("STATE_FILE", "atm_state.yaml")
	viper.SetDefault("JOURNAL_FILE", "atm_journal.log")
	viper.SetDefault("VAULT_INITIAL_EUROS", 2000)
	viper.SetDefault("PAPER_COST_PER_PRINT", 1)
	viper.SetDefault("INK_COST_PER_PRINT", 2)
	viper.SetDefault("SUPPLY_LOW_THRESHOLD", 10)
	viper.SetDefault("ALLOW_AUTO_REGISTER", true)
	viper.SetDefault("STATE_SYNC_SCHEDULE", "*/5 * * * *")  // Every five minutes.
	viper.SetDefault("SUPPLY_REPORT_SCHEDULE", "0 * * * *") // At the top of every hour.
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("TERMINAL_ID")
	_ = viper.BindEnv("TECHNICIAN_ID")
	_ = viper.BindEnv("TECHNICIAN_SECRET")
	_ = viper.BindEnv("STATE_FILE")
	_ = viper.BindEnv("JOURNAL_FILE")
	_ = viper.BindEnv("VAULT_INITIAL_EUROS")
	_ = viper.BindEnv("PAPER_COST_PER_PRINT")
	_ = viper.BindEnv("INK_COST_PER_PRINT")
	_ = viper.BindEnv("SUPPLY_LOW_THRESHOLD")
	_ = viper.BindEnv("ALLOW_AUTO_REGISTER")
	_ = viper.BindEnv("STATE_SYNC_SCHEDULE")
	_ = viper.BindEnv("SUPPLY_REPORT_SCHEDULE")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.TechnicianID = strings.TrimSpace(config.TechnicianID)
	config.TechnicianSecret = strings.TrimSpace(config.TechnicianSecret)
	if config.TechnicianID == "" || config.TechnicianSecret == "" {
		return nil, ErrMissingTechnicianCredentials
	}

	if config.VaultInitialEuros < 0 {
		log.Printf("level=warn component=config msg=\"negative initial vault configured; coercing to zero\" vault_euros=%d", config.VaultInitialEuros)
		config.VaultInitialEuros = 0
	}
	if config.PaperCostPerPrint < 1 {
		log.Printf("level=warn component=config msg=\"paper cost below one; coercing to one\" paper_cost=%d", config.PaperCostPerPrint)
		config.PaperCostPerPrint = 1
	}
	if config.InkCostPerPrint < 1 {
		log.Printf("level=warn component=config msg=\"ink cost below one; coercing to one\" ink_cost=%d", config.InkCostPerPrint)
		config.InkCostPerPrint = 1
	}
	if config.SupplyLowThreshold < 0 {
		config.SupplyLowThreshold = 0
	}
	if config.SupplyLowThreshold > 100 {
		log.Printf("level=warn component=config msg=\"low-supply threshold above capacity; capping at 100\" threshold=%d", config.SupplyLowThreshold)
		config.SupplyLowThreshold = 100
	}

	return &config, nil
}
