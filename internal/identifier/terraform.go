package identifier

import "strings"

// DefaultTerraformRegistry is used when a provider address omits the
// registry host.
const DefaultTerraformRegistry = "registry.terraform.io"

// TerraformProvider identifies a provider in a Terraform registry.
type TerraformProvider struct {
	// Registry is the registry hostname, e.g. "registry.terraform.io".
	Registry string

	// Namespace is the publisher namespace, e.g. "hashicorp".
	Namespace string

	// Type is the provider type, e.g. "aws".
	Type string
}

// ParseTerraformProvider parses "namespace/type" or
// "registry/namespace/type".
func ParseTerraformProvider(raw string) (TerraformProvider, error) {
	parts := strings.Split(raw, "/")

	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return TerraformProvider{}, &InvalidIdentifierError{Input: raw, Reason: "namespace and type must be non-empty"}
		}
		return TerraformProvider{
			Registry:  DefaultTerraformRegistry,
			Namespace: parts[0],
			Type:      parts[1],
		}, nil
	case 3:
		if parts[0] == "" {
			return TerraformProvider{}, &InvalidIdentifierError{Input: raw, Reason: "registry must be non-empty"}
		}
		if parts[1] == "" || parts[2] == "" {
			return TerraformProvider{}, &InvalidIdentifierError{Input: raw, Reason: "namespace and type must be non-empty"}
		}
		return TerraformProvider{
			Registry:  parts[0],
			Namespace: parts[1],
			Type:      parts[2],
		}, nil
	default:
		return TerraformProvider{}, &InvalidIdentifierError{
			Input:  raw,
			Reason: "expected namespace/type or registry/namespace/type",
		}
	}
}
