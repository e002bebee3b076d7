// Package config holds the newsroom configuration.
package config

// Config is the root configuration.
type Config struct {
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
	Wire    Wire    `yaml:"wire"`
	Demo    Demo    `yaml:"demo"`
}

// Logging configures the structured logger.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Format  string `yaml:"format"` // "json" or "text"
}

// Server configures the HTTP surface used with -serve.
type Server struct {
	Addr string `yaml:"addr"`
}

// Wire configures how headlines are mirrored to other nodes.
type Wire struct {
	Transport       string   `yaml:"transport"` // "memory" or "libp2p"
	Topic           string   `yaml:"topic"`
	Buffer          int      `yaml:"buffer"`
	ListenAddrs     []string `yaml:"listen_addrs"`
	Bootstrap       []string `yaml:"bootstrap"`
	Rendezvous      string   `yaml:"rendezvous"`
	EnableMDNS      bool     `yaml:"enable_mdns"`
	IdentityKeyFile string   `yaml:"identity_key_file"`
}

// Demo drives the console scenario run without -serve.
type Demo struct {
	Subscribers []string `yaml:"subscribers"`
	Headlines   []string `yaml:"headlines"`
}

const (
	TransportMemory = "memory"
	TransportLibp2p = "libp2p"
)

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Logging: Logging{
			Level:   "info",
			Service: "newsroom",
			Format:  "json",
		},
		Server: Server{
			Addr: ":8090",
		},
		Wire: Wire{
			Transport:  TransportMemory,
			Topic:      "newsroom.headlines",
			Buffer:     64,
			Rendezvous: "newsroom",
		},
		Demo: Demo{
			Subscribers: []string{"Subscriber-1", "Subscriber-2"},
			Headlines: []string{
				"New sports article has been published",
				"New global article has been published",
			},
		},
	}
}
