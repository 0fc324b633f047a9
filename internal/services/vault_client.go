package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// VaultClient handles secure secret management using HashiCorp Vault.
// When Vault is configured, the database password and the narrative
// collaborator API key are loaded from it instead of the config file.
type VaultClient struct {
	client *api.Client
	logger *zap.Logger
}

// VaultSecret represents a secret stored in Vault
type VaultSecret struct {
	Data map[string]interface{} `json:"data"`
}

// NewVaultClient creates a new Vault client
func NewVaultClient(baseURL, token string, logger *zap.Logger) (*VaultClient, error) {
	config := &api.Config{
		Address: baseURL,
		HttpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	client.SetToken(token)

	return &VaultClient{client: client, logger: logger}, nil
}

// GetSecret retrieves a secret from Vault
func (v *VaultClient) GetSecret(path string) (*VaultSecret, error) {
	secret, err := v.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret data found at %s", path)
	}

	return &VaultSecret{Data: secret.Data}, nil
}

// LoadSecretsFromVault loads the service's secrets and returns them as
// viper-compatible key/value overrides. Missing paths are logged and
// skipped so the service can fall back to config-file values.
func (v *VaultClient) LoadSecretsFromVault(serviceName string) (map[string]string, error) {
	secrets := make(map[string]string)

	dbPath := fmt.Sprintf("faithbridge/%s/database", serviceName)
	if dbSecret, err := v.GetSecret(dbPath); err == nil {
		if password, ok := dbSecret.Data["password"].(string); ok {
			secrets["database.password"] = password
		}
		if user, ok := dbSecret.Data["user"].(string); ok {
			secrets["database.user"] = user
		}
	} else {
		v.logger.Warn("Failed to load database credentials from Vault", zap.Error(err))
	}

	llmPath := fmt.Sprintf("faithbridge/%s/llm", serviceName)
	if llmSecret, err := v.GetSecret(llmPath); err == nil {
		if apiKey, ok := llmSecret.Data["api_key"].(string); ok {
			secrets["llm.api_key"] = apiKey
		}
	} else {
		v.logger.Warn("Failed to load LLM credentials from Vault", zap.Error(err))
	}

	redisPath := fmt.Sprintf("faithbridge/%s/redis", serviceName)
	if redisSecret, err := v.GetSecret(redisPath); err == nil {
		if password, ok := redisSecret.Data["password"].(string); ok {
			secrets["redis.password"] = password
		}
	} else {
		v.logger.Warn("Failed to load Redis credentials from Vault", zap.Error(err))
	}

	return secrets, nil
}

// HealthCheck checks if Vault is accessible
func (v *VaultClient) HealthCheck() error {
	_, err := v.client.Sys().Health()
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	return nil
}
