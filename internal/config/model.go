// internal/config/model.go
//
// Typed configuration model for the Digital Madrasa edge service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `MADRASA_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr    string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS    bool   `koanf:"force_https"`
	SecureCookies bool   `koanf:"secure_cookies"`
}

//
// API section
//

// API describes the remote Digital Madrasa REST backend every session and
// referral operation talks to.  The key, when present, is sent as
// X-Api-Key on every call; operators keep it in Vault (`vault:` URI).
type API struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Key     string `koanf:"key"`
	Timeout int    `koanf:"timeout_seconds" validate:"gte=0"`
}

//
// Referral section
//

// Referral tunes the attribution flow: where the enrollment funnel lives
// and how long the invalid-code error page lingers before falling back.
type Referral struct {
	EnrollURL     string `koanf:"enroll_url" validate:"required"`
	FallbackDelay int    `koanf:"fallback_delay_seconds" validate:"gte=1"`
}

//
// Journal section
//

// Journal configures the local referral-click journal.  An empty DSN
// disables it; clicks are then only recorded remotely.  The DSN password
// normally arrives via a `vault:` URI.
type Journal struct {
	DSN string `koanf:"dsn"`
}

//
// GeoIP section
//

// GeoIP points at the MaxMind database used to enrich click events.  An
// empty path disables geolocation; clicks still record UA facts.
type GeoIP struct {
	Path string `koanf:"path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or MADRASA_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // MADRASA_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	API      API      `koanf:"api"`
	Referral Referral `koanf:"referral"`
	Journal  Journal  `koanf:"journal"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
