package useradmin

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// BaseConfig is the service configuration container. It satisfies the
// package Config interface through nil-safe delegating getters so a
// partially populated file still yields working defaults.
type BaseConfig struct {
	Auth        *AuthConfig        `json:"auth" yaml:"auth"`
	Server      *ServerConfig      `json:"server" yaml:"server"`
	Persistence *PersistenceConfig `json:"persistence" yaml:"persistence"`
	Operations  *OperationsConfig  `json:"operations" yaml:"operations"`
}

type AuthConfig struct {
	SigningKey    string   `json:"signing_key" yaml:"signing_key"`
	SigningMethod string   `json:"signing_method" yaml:"signing_method"`
	Issuer        string   `json:"issuer" yaml:"issuer"`
	Audience      []string `json:"audience" yaml:"audience"`
	AuthScheme    string   `json:"auth_scheme" yaml:"auth_scheme"`
	AdminEmails   []string `json:"admin_emails" yaml:"admin_emails"`
}

type ServerConfig struct {
	Address string `json:"address" yaml:"address"`
}

type PersistenceConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
	// RevocationBackend selects where tombstones live: "sql" keeps
	// them next to the profiles, "redis" uses a shared cache so other
	// services can consult revocations without a database grant.
	RevocationBackend string `json:"revocation_backend" yaml:"revocation_backend"`
	RedisAddr         string `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword     string `json:"redis_password" yaml:"redis_password"`
	RedisDB           int    `json:"redis_db" yaml:"redis_db"`
}

type OperationsConfig struct {
	BulkWorkers              int    `json:"bulk_workers" yaml:"bulk_workers"`
	RetryMaxAttempts         int    `json:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryInitialIntervalExpr string `json:"retry_initial_interval" yaml:"retry_initial_interval"`
}

func (c *BaseConfig) Validate() error {
	if c.Auth == nil || c.Auth.SigningKey == "" {
		return validation.Errors{
			"auth.signing_key": fmt.Errorf("signing key is required"),
		}
	}
	return nil
}

func (c *BaseConfig) GetSigningKey() string {
	if c.Auth == nil {
		return ""
	}
	return c.Auth.SigningKey
}

func (c *BaseConfig) GetSigningMethod() string {
	if c.Auth == nil || c.Auth.SigningMethod == "" {
		return "HS256"
	}
	return c.Auth.SigningMethod
}

func (c *BaseConfig) GetIssuer() string {
	if c.Auth == nil {
		return ""
	}
	return c.Auth.Issuer
}

func (c *BaseConfig) GetAudience() []string {
	if c.Auth == nil {
		return nil
	}
	return c.Auth.Audience
}

func (c *BaseConfig) GetAuthScheme() string {
	if c.Auth == nil || c.Auth.AuthScheme == "" {
		return "Bearer"
	}
	return c.Auth.AuthScheme
}

func (c *BaseConfig) GetAdminEmails() []string {
	if c.Auth == nil {
		return nil
	}
	return c.Auth.AdminEmails
}

func (c *BaseConfig) GetAddress() string {
	if c.Server == nil || c.Server.Address == "" {
		return ":8572"
	}
	return c.Server.Address
}

func (c *BaseConfig) GetDSN() string {
	if c.Persistence == nil || c.Persistence.DSN == "" {
		return "file:useradmin.db?cache=shared"
	}
	return c.Persistence.DSN
}

func (c *BaseConfig) GetRevocationBackend() string {
	if c.Persistence == nil || c.Persistence.RevocationBackend == "" {
		return "sql"
	}
	return c.Persistence.RevocationBackend
}

func (c *BaseConfig) GetRedisAddr() string {
	if c.Persistence == nil {
		return ""
	}
	return c.Persistence.RedisAddr
}

func (c *BaseConfig) GetRedisPassword() string {
	if c.Persistence == nil {
		return ""
	}
	return c.Persistence.RedisPassword
}

func (c *BaseConfig) GetRedisDB() int {
	if c.Persistence == nil {
		return 0
	}
	return c.Persistence.RedisDB
}

func (c *BaseConfig) GetBulkWorkers() int {
	if c.Operations == nil || c.Operations.BulkWorkers <= 0 {
		return 4
	}
	return c.Operations.BulkWorkers
}

func (c *BaseConfig) GetRetryMaxAttempts() int {
	if c.Operations == nil || c.Operations.RetryMaxAttempts <= 0 {
		return 3
	}
	return c.Operations.RetryMaxAttempts
}

func (c *BaseConfig) GetRetryInitialInterval() time.Duration {
	if c.Operations == nil || c.Operations.RetryInitialIntervalExpr == "" {
		return 100 * time.Millisecond
	}
	dur, err := time.ParseDuration(c.Operations.RetryInitialIntervalExpr)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", c.Operations.RetryInitialIntervalExpr),
		)
	}
	return dur
}
