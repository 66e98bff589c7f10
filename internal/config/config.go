// Package config holds the start-up configuration of the chessbot binaries.
// Values are collected from flags in each main and validated once.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	EnvServerURL = "CHESSBOT_SERVER_URL"
	EnvPort      = "CHESSBOT_PORT"

	DefaultServerURL = "http://localhost:5000"
	DefaultPort      = 5000
	DefaultAgent     = "random"
)

// Client configures the terminal client and the websocket bridge
type Client struct {
	ServerURL   string        `validate:"required,url"`
	PlayerColor string        `validate:"required,oneof=w b white black"`
	Agent       string        `validate:"omitempty,oneof=random greedy minimax minimax-1 engine"`
	Timeout     time.Duration `validate:"min=1s,max=5m"`
	Verbose     bool
}

// Server configures the reference move service
type Server struct {
	Host        string `validate:"required,hostname|ip"`
	Port        int    `validate:"min=1,max=65535"`
	StoragePath string `validate:"omitempty,max=4096"`
	PIDPath     string
	PIDLock     bool
	Agent       string `validate:"required,oneof=random greedy minimax minimax-1 engine"`
	// EnginePath is a UCI engine binary served as the "engine" agent
	EnginePath string
	Dev        bool
}

// Bridge configures the websocket bridge listener
type Bridge struct {
	Client
	Listen string `validate:"required,hostname_port"`
}

var validate = validator.New()

func (c *Client) Validate() error {
	return check(c)
}

func (s *Server) Validate() error {
	if s.PIDLock && s.PIDPath == "" {
		return fmt.Errorf("invalid config: -pid-lock requires -pid")
	}
	if s.Agent == "engine" && s.EnginePath == "" {
		return fmt.Errorf("invalid config: agent engine requires -engine")
	}
	return check(s)
}

func (b *Bridge) Validate() error {
	return check(b)
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Getenv returns the environment value of key, or def when unset
func Getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// GetenvInt is Getenv for integer values; unparsable values fall back to def
func GetenvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
