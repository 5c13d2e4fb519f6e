package vault

import (
	"context"
	"fmt"
	"os"

	v "github.com/hashicorp/vault/api"
)

type Vault = v.Client

// VaultManager holds one client per token scope: Services for the
// datastore credentials, Api for the gateway and inbound API keys.
type VaultManager struct {
	Api      *Vault
	Services *Vault
}

func NewVaultManager() (VaultManager, error) {
	config := v.Config{
		Address: os.Getenv("VAULT_ADDR"),
	}

	api, err := v.NewClient(&config)
	if err != nil {
		return VaultManager{}, fmt.Errorf("failed to create Vault client: %w", err)
	}

	services, err := v.NewClient(&config)
	if err != nil {
		return VaultManager{}, fmt.Errorf("failed to create Vault client: %w", err)
	}

	vault_manager := VaultManager{
		Api:      api,
		Services: services,
	}
	return vault_manager, nil
}

func (manager *VaultManager) Health() bool {
	api_health, err := manager.Api.Sys().Health()
	if err != nil {
		return false
	}
	services_health, err := manager.Services.Sys().Health()
	if err != nil {
		return false
	}

	return (api_health.Initialized && !api_health.Sealed) &&
		(services_health.Initialized && !services_health.Sealed)
}

// readValue extracts the "value" field of a KVv2 secret.
func readValue(client *Vault, path string) (string, error) {
	secret, err := client.Logical().Read(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at path: %s", path)
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid secret data format at path: %s", path)
	}
	value, ok := data["value"].(string)
	if !ok {
		return "", fmt.Errorf("key not found or invalid in secret data at path: %s", path)
	}
	return value, nil
}

func (manager *VaultManager) GetCachePwd() (string, error) {
	return readValue(manager.Services, "services/data/cache/arena_pwd")
}

func (manager *VaultManager) GetDbPwd() (string, error) {
	return readValue(manager.Services, "services/data/db/arena_pwd")
}

func (manager *VaultManager) GetApiKey(name string) (string, error) {
	return readValue(manager.Api, fmt.Sprintf("api/data/%s", name))
}

// StoreApiKey provisions an inbound API key under the Api scope.
func (manager *VaultManager) StoreApiKey(name string, key string) error {
	secret := map[string]interface{}{
		"value": key,
	}
	kvv2 := manager.Api.KVv2("api")

	_, err := kvv2.Put(context.Background(), name, secret)
	if err != nil {
		return fmt.Errorf("failed to store key in Vault: %w", err)
	}
	return nil
}

// LoadApiKeys mirrors the named keys from the Api scope into the process
// environment so key-gated routes can check them without a Vault round-trip.
func (manager *VaultManager) LoadApiKeys(names ...string) error {
	for _, name := range names {
		value, err := manager.GetApiKey(name)
		if err != nil {
			return fmt.Errorf("failed to load api key %s: %w", name, err)
		}
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("failed to expose api key %s: %w", name, err)
		}
	}
	return nil
}

func (manager *VaultManager) GenPwd() (string, error) {
	secret, err := manager.Services.Logical().Read("password/generate")
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	password, ok := secret.Data["password"].(string)
	if !ok {
		return "", fmt.Errorf("password format is incorrect")
	}

	return password, nil
}
