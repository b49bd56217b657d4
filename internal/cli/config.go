package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	Token        string
	RefreshToken string
	TokenDir     string
	Output       string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("PICKEM_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("PICKEM_TOKEN"),
		TokenDir:  getEnvOrDefault("PICKEM_TOKEN_DIR", defaultTokenDir()),
		Output:    "text",
	}
}

func (c *Config) accessTokenFile() string {
	return filepath.Join(c.TokenDir, "token")
}

func (c *Config) refreshTokenFile() string {
	return filepath.Join(c.TokenDir, "refresh_token")
}

// LoadTokens loads saved tokens if not already set
func (c *Config) LoadTokens() error {
	if c.Token == "" {
		token, err := readTokenFile(c.accessTokenFile())
		if err != nil {
			return err
		}
		c.Token = token
	}

	refresh, err := readTokenFile(c.refreshTokenFile())
	if err != nil {
		return err
	}
	c.RefreshToken = refresh
	return nil
}

// SaveTokens saves both tokens to the token directory. An empty refresh
// token leaves the saved one untouched.
func (c *Config) SaveTokens(access, refresh string) error {
	c.Token = access

	if err := os.MkdirAll(c.TokenDir, 0700); err != nil {
		return err
	}
	if err := os.WriteFile(c.accessTokenFile(), []byte(access), 0600); err != nil {
		return err
	}

	if refresh != "" {
		c.RefreshToken = refresh
		if err := os.WriteFile(c.refreshTokenFile(), []byte(refresh), 0600); err != nil {
			return err
		}
	}
	return nil
}

func readTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // No token file is fine
		}
		return "", err
	}
	return string(data), nil
}

func defaultTokenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pickem"
	}
	return filepath.Join(home, ".pickem")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
