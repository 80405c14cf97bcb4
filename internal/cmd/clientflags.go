package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/dddabtc/winremote-mcp/internal/client"
)

var (
	flagServerURL string
	flagAuthKey   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "server base URL (default http://<server.host>:<server.port>)")
	rootCmd.PersistentFlags().StringVar(&flagAuthKey, "auth-key", "", "auth key sent as X-Auth-Key")
}

// newClient builds a client for the target server. Flags win; otherwise
// the address comes from the same config the server reads, so a local
// CLI talks to a local server with zero setup.
func newClient() *client.Client {
	url := flagServerURL
	if url == "" {
		url = fmt.Sprintf("http://%s:%d", viper.GetString("server.host"), viper.GetInt("server.port"))
	}
	key := flagAuthKey
	if key == "" {
		key = viper.GetString("server.auth_key")
	}
	return client.New(url, key)
}
