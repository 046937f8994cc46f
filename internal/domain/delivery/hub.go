package delivery

// Hub is the optional global courier-hub override. When configured it takes
// precedence over per-company API settings, letting every company route
// through one aggregator backend. It is parsed once at startup from
// configuration and injected into the validators and the dispatch
// orchestrator; nothing reads the environment at call time.
type Hub struct {
	// BaseURL overrides every company's base URL when set
	BaseURL string
	// Format overrides the protocol format when set
	Format ProtocolFormat
	// Method is the default JSON-RPC method name
	Method string
	// AuthMethod and Credentials override company auth when set
	AuthMethod  AuthMethod
	Credentials Credentials
	// DB is the hub-wide database parameter for Odoo-style backends
	DB string
	// DefaultParams are merged into every request body at lowest priority
	DefaultParams map[string]string
	// DefaultQueryParams are merged into every request URL at lowest priority
	DefaultQueryParams map[string]string
	// APIKeyHeader is the default header name for apiKey auth
	APIKeyHeader string
	// StatusCheckURL is a default status URL template with a :tracking placeholder
	StatusCheckURL string
}

// Enabled returns true when the hub override is active.
func (h *Hub) Enabled() bool {
	return h != nil && h.BaseURL != ""
}

// Database returns the hub db parameter, falling back to the hub credentials.
func (h *Hub) Database() string {
	if h == nil {
		return ""
	}
	if h.DB != "" {
		return h.DB
	}
	return h.Credentials.Database
}
