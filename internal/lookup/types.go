// Package lookup orchestrates batch latest-version lookups across package
// ecosystems.
package lookup

// Ecosystem identifies a supported package ecosystem.
type Ecosystem string

const (
	EcosystemNPM       Ecosystem = "npm"
	EcosystemPyPI      Ecosystem = "pypi"
	EcosystemMaven     Ecosystem = "maven"
	EcosystemHelm      Ecosystem = "helm"
	EcosystemTerraform Ecosystem = "terraform-provider"
	EcosystemGitHub    Ecosystem = "github"
	EcosystemDocker    Ecosystem = "docker"
)

// Ecosystems lists every supported ecosystem.
func Ecosystems() []Ecosystem {
	return []Ecosystem{
		EcosystemNPM,
		EcosystemPyPI,
		EcosystemMaven,
		EcosystemHelm,
		EcosystemTerraform,
		EcosystemGitHub,
		EcosystemDocker,
	}
}

// Valid reports whether e names a supported ecosystem.
func (e Ecosystem) Valid() bool {
	for _, known := range Ecosystems() {
		if e == known {
			return true
		}
	}
	return false
}

// Request is one package version lookup.
type Request struct {
	Ecosystem   Ecosystem `json:"ecosystem"`
	PackageName string    `json:"package_name"`

	// Version optionally names a currently used version; the answer is
	// then constrained to that version's compatibility profile.
	Version string `json:"version,omitempty"`
}

// Result is a successful lookup.
type Result struct {
	Ecosystem     Ecosystem `json:"ecosystem"`
	PackageName   string    `json:"package_name"`
	LatestVersion string    `json:"latest_version"`
	Digest        string    `json:"digest,omitempty"`
	PublishedOn   string    `json:"published_on,omitempty"`
}

// LookupError is a failed lookup.
type LookupError struct {
	Ecosystem   Ecosystem `json:"ecosystem"`
	PackageName string    `json:"package_name"`
	Error       string    `json:"error"`
}

// Response groups the successes and failures of a batch, each in the order
// the requests arrived.
type Response struct {
	Result       []Result      `json:"result"`
	LookupErrors []LookupError `json:"lookup_errors"`
}
