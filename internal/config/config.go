package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Keyring struct {
		// SQLite DSN of the account keyring, e.g. a file path.
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"keyring"`

	Vault struct {
		// Path to a file containing the vault passphrase (0400 perms).
		// If empty, an interactive prompt will be used.
		PassphraseFile string `mapstructure:"passphrase_file"`
		// AllowUnencryptedPrivateKeys bypasses the private key decryption
		// step: keys are accepted and stored only in already-decrypted form.
		AllowUnencryptedPrivateKeys bool `mapstructure:"allow_unencrypted_private_keys"`
		// Locale for user-facing error messages, e.g. "fr". Empty means
		// English templates as-is.
		Locale string `mapstructure:"locale"`
	} `mapstructure:"vault"`
}

func Load() (*Config, error) {
	env := os.Getenv("PASSBOLT_ENV")
	if env != "prod" {
		env = "dev"
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/passbolt-vault/")

	// Allow override via ENV vars such as PASSBOLT_VAULT_PASSPHRASE_FILE
	viper.SetEnvPrefix("PASSBOLT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
