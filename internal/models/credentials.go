package models

// Credentials is a discriminated union over the per-category credential
// shapes (spec.md §9 Design Notes: "model it as a discriminated union on
// device category"). The discriminator is inferred from the owning
// Device's Type.
type Credentials interface {
	isCredentials()
}

// CredentialProfileType mirrors the category a CredentialProfile applies to.
type CredentialProfileType string

const (
	CredentialTypeMikrotik   CredentialProfileType = "mikrotik"
	CredentialTypeSNMP       CredentialProfileType = "snmp"
	CredentialTypePrometheus CredentialProfileType = "prometheus"
	CredentialTypeProxmox    CredentialProfileType = "proxmox"
	CredentialTypePing       CredentialProfileType = "ping"
)

// CompatibleProfileTypes returns which CredentialProfile types a device of
// the given DeviceType may select (spec.md §6 REST contract, behavioral).
func CompatibleProfileTypes(t DeviceType) []CredentialProfileType {
	switch t {
	case DeviceTypeMikrotikRouter, DeviceTypeMikrotikSwitch:
		return []CredentialProfileType{CredentialTypeMikrotik}
	case DeviceTypeGenericSNMP, DeviceTypeAccessPoint:
		return []CredentialProfileType{CredentialTypeSNMP}
	case DeviceTypeServer:
		return []CredentialProfileType{CredentialTypeSNMP, CredentialTypePrometheus}
	case DeviceTypeProxmox:
		return []CredentialProfileType{CredentialTypeProxmox}
	case DeviceTypeGenericPing:
		return nil // requires no credentials
	default:
		return nil
	}
}

// MikrotikCredentials authenticates against the RouterOS API.
type MikrotikCredentials struct {
	Username string
	Password string
	APIPort  int // default 8728
	UseTLS   bool
}

func (MikrotikCredentials) isCredentials() {}

// SNMPVersion enumerates the supported SNMP protocol versions.
type SNMPVersion string

const (
	SNMPv1  SNMPVersion = "v1"
	SNMPv2c SNMPVersion = "v2c"
	SNMPv3  SNMPVersion = "v3"
)

// SNMPAuthProtocol enumerates supported SNMPv3 authentication protocols.
type SNMPAuthProtocol string

const (
	SNMPAuthMD5 SNMPAuthProtocol = "MD5"
	SNMPAuthSHA SNMPAuthProtocol = "SHA"
)

// SNMPPrivProtocol enumerates supported SNMPv3 privacy protocols.
type SNMPPrivProtocol string

const (
	SNMPPrivDES SNMPPrivProtocol = "DES"
	SNMPPrivAES SNMPPrivProtocol = "AES"
)

// SNMPCredentials authenticates an SNMP probe. Only v3 authPriv is
// supported for v3 (spec.md §4.2).
type SNMPCredentials struct {
	Version       SNMPVersion
	Community     string // v1/v2c
	Username      string // v3
	AuthProtocol  SNMPAuthProtocol
	AuthPassword  string
	PrivProtocol  SNMPPrivProtocol
	PrivPassword  string
	Port          int // default 161
}

func (SNMPCredentials) isCredentials() {}

// PrometheusMetricConfig selects one custom metric to collect alongside the
// always-collected core metrics (spec.md §4.2).
type PrometheusMetricConfig struct {
	MetricName    string
	LabelSelector map[string]string // exact-match label constraints
	DisplayType   string            // number|bytes|percentage|bar|text|boolean|rate|gauge
	Unit          string
}

// PrometheusCredentials configures a node_exporter-style scrape target.
type PrometheusCredentials struct {
	Port          int    // default 9100
	Path          string // default /metrics
	UseHTTPS      bool
	CustomMetrics []PrometheusMetricConfig
}

func (PrometheusCredentials) isCredentials() {}

// ProxmoxAuthMode selects between API-token and username/password auth.
type ProxmoxAuthMode string

const (
	ProxmoxAuthToken    ProxmoxAuthMode = "token"
	ProxmoxAuthPassword ProxmoxAuthMode = "password"
)

// ProxmoxCredentials authenticates against the Proxmox REST API.
type ProxmoxCredentials struct {
	Mode ProxmoxAuthMode
	Port int // default 8006

	// Token mode: "user@realm!name" plus secret.
	TokenID     string
	TokenSecret string

	// Password mode.
	Username string
	Password string
	Realm    string
}

func (ProxmoxCredentials) isCredentials() {}

// PingCredentials is intentionally empty: generic_ping devices require no
// credentials (spec.md §6).
type PingCredentials struct{}

func (PingCredentials) isCredentials() {}

// CredentialProfile is a named, reusable credential bag.
type CredentialProfile struct {
	ID          string
	Name        string
	Type        CredentialProfileType
	Credentials Credentials
}
