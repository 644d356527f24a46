package api

// Config holds server configuration.
type Config struct {
	Port              int
	RepoDir           string     // On-disk sequence repository root
	DBPath            string     // SQLite sequence database (overrides RepoDir)
	RefgetURL         string     // Remote refget service base URL (overrides RepoDir and DBPath)
	CacheSize         int        // Sequence slice cache entries (0 = default)
	AssemblyName      string     // Assembly for bare chromosome names
	RateLimitRequests int        // Requests per minute (0 = disabled)
	RateLimitBurst    int        // Burst size
	Auth              AuthConfig // Authentication configuration
	TLS               TLSConfig  // TLS configuration
	AllowedOrigins    []string   // CORS allowed origins (empty = allow all)
}

// TLSConfig holds TLS/HTTPS configuration.
type TLSConfig struct {
	Enabled  bool   // Enable HTTPS
	CertFile string // Path to TLS certificate file
	KeyFile  string // Path to TLS private key file
}

// ServerConfig is the active server configuration.
var ServerConfig Config

// Version is the server version reported by /health. The CLI overwrites
// it at startup.
var Version = "dev"
