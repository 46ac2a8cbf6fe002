package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

// Network is the host network state published by pi-helper.
type Network struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// ReadNetwork reads network info from a pi-helper env file. When the file
// does not exist the process environment is used instead. It returns nil,
// nil if no network status is known.
func ReadNetwork(path string) (*Network, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		env = map[string]string{}
		for _, k := range []string{envNetworkType, envNetworkIP, envNetworkStatus, envNetworkGateway, envNetworkWifiStatus, envNetworkWifiSSID} {
			if v, ok := os.LookupEnv(k); ok {
				env[k] = v
			}
		}
	} else if err != nil {
		return nil, err
	}

	s := env[envNetworkStatus]
	if s == "" {
		return nil, nil
	}
	return &Network{
		Type:       env[envNetworkType],
		IP:         env[envNetworkIP],
		Status:     s,
		Gateway:    env[envNetworkGateway],
		WifiStatus: env[envNetworkWifiStatus],
		SSID:       env[envNetworkWifiSSID],
	}, nil
}
