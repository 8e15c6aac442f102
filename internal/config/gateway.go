package config

import "time"

type GatewayConfig struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
}

type WebSocketConfig struct {
	PingInterval   time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

// LoadGatewayConfig loads configuration for the gateway module
func LoadGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		Server: ServerConfig{
			HTTPPort: getEnv("GATEWAY_HTTP_PORT", "8081"),
			Name:     "gateway-service",
		},
		WebSocket: WebSocketConfig{
			PingInterval:   54 * time.Second,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			MaxMessageSize: 4096,
		},
	}
}
