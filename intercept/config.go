package intercept

// DefaultCacheName is the shell cache name.
const DefaultCacheName = "wxshell-shell-v1"

// DefaultManifest lists the shell assets precached on install.
func DefaultManifest() []string {
	return []string{"/", "/index.html", "/bootstrap.js", "/app.js"}
}

// Config configures a Worker.
type Config struct {
	// Origin is the absolute URL manifest paths are resolved against.
	Origin string

	// CacheName names the shell cache.
	CacheName string

	// Manifest lists the shell assets to precache.
	Manifest []string

	// Rules classify dynamic-data hosts.
	Rules []Rule

	// RelayDynamic relays dynamic-data responses to the originating page.
	// When false those responses pass through without relay.
	RelayDynamic bool
}

// DefaultConfig returns the relaying configuration for origin.
func DefaultConfig(origin string) Config {
	return Config{
		Origin:       origin,
		CacheName:    DefaultCacheName,
		Manifest:     DefaultManifest(),
		Rules:        DefaultRules(),
		RelayDynamic: true,
	}
}
