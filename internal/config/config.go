package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the server configuration loaded from YAML and environment variables
type Config struct {
	Server   Server   `yaml:"server" json:"server"`
	Database Database `yaml:"database" json:"database"`
	Game     Game     `yaml:"game" json:"game"`
}

type Server struct {
	Port        string `yaml:"port" json:"port"`
	FrontendURL string `yaml:"frontend_url" json:"frontend_url"`
}

type Database struct {
	Path string `yaml:"path" json:"path"`
}

type Game struct {
	// DoubleClickMs is the window for two presses on the same item to
	// count as a double-click
	DoubleClickMs int `yaml:"double_click_ms" json:"double_click_ms"`
	MarginX       int `yaml:"margin_x" json:"margin_x"`
	MarginY       int `yaml:"margin_y" json:"margin_y"`
	BoardWidth    int `yaml:"board_width" json:"board_width"`
	BoardHeight   int `yaml:"board_height" json:"board_height"`
}

func (s *Server) ApplyDefaults() {
	if s.Port == "" {
		s.Port = "8080"
	}
	if s.FrontendURL == "" {
		s.FrontendURL = "http://localhost:3000"
	}
}

func (d *Database) ApplyDefaults() {
	if d.Path == "" {
		d.Path = "./data/solitaire.db"
	}
}

func (g *Game) ApplyDefaults() {
	if g.DoubleClickMs == 0 {
		g.DoubleClickMs = 400
	}
	if g.MarginX == 0 {
		g.MarginX = 20
	}
	if g.MarginY == 0 {
		g.MarginY = 10
	}
	if g.BoardWidth == 0 {
		g.BoardWidth = 960
	}
	if g.BoardHeight == 0 {
		g.BoardHeight = 640
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Game.ApplyDefaults()
}

// Default returns the configuration used when no file or overrides are present
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML configuration file and fills in defaults for anything
// the file leaves unset. A missing file is not an error, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}

// ApplyEnv overrides configuration values from environment variables.
// Unset variables leave the current values untouched.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.FrontendURL = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := getEnvInt("DOUBLE_CLICK_MS"); v > 0 {
		c.Game.DoubleClickMs = v
	}
	if v := getEnvInt("BOARD_WIDTH"); v > 0 {
		c.Game.BoardWidth = v
	}
	if v := getEnvInt("BOARD_HEIGHT"); v > 0 {
		c.Game.BoardHeight = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
