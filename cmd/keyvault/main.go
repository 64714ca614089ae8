package main

import (
	"log"

	"github.com/funaisokenhd/passbolt-browser-extension/internal/config"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/logging"
	"github.com/funaisokenhd/passbolt-browser-extension/internal/vault"
)

func main() {
	// 1) Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.Default()

	// 2) Open the vault (loads passphrase, checks verifier, unlocks key)
	v, err := vault.Open(cfg, logger)
	if err != nil {
		log.Fatalf("vault bootstrap error: %v", err)
	}
	defer func() {
		if err := v.Close(); err != nil {
			logger.Error("error during shutdown", "err", err)
		}
	}()

	// 3) Report keyring status
	fingerprints, err := v.Fingerprints()
	if err != nil {
		log.Fatalf("listing keyring: %v", err)
	}
	logger.Info("vault open",
		"keys", len(fingerprints),
		"unlocked", v.PrivateKey() != nil)
}
