package identifier

import "strings"

// DefaultMavenRegistry is used when a coordinate omits the registry part.
const DefaultMavenRegistry = "https://repo1.maven.org/maven2"

// Maven identifies an artifact in a Maven repository.
type Maven struct {
	// Registry is the repository base URL, scheme included, no trailing
	// slash.
	Registry string

	// GroupID is the Maven groupId, e.g. "org.springframework".
	GroupID string

	// ArtifactID is the Maven artifactId, e.g. "spring-core".
	ArtifactID string
}

// ParseMaven parses "groupId:artifactId" or "registry:groupId:artifactId".
// The registry part is recognized purely by colon count: two parts mean the
// default registry, three parts mean the first is a registry. A registry
// containing a literal port therefore cannot be expressed; this is a known
// limitation kept for compatibility.
func ParseMaven(raw string) (Maven, error) {
	parts := strings.Split(raw, ":")

	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Maven{}, &InvalidIdentifierError{Input: raw, Reason: "groupId and artifactId must be non-empty"}
		}
		return Maven{
			Registry:   DefaultMavenRegistry,
			GroupID:    parts[0],
			ArtifactID: parts[1],
		}, nil
	case 3:
		if parts[0] == "" {
			return Maven{}, &InvalidIdentifierError{Input: raw, Reason: "registry must be non-empty"}
		}
		if parts[1] == "" || parts[2] == "" {
			return Maven{}, &InvalidIdentifierError{Input: raw, Reason: "groupId and artifactId must be non-empty"}
		}
		return Maven{
			Registry:   normalizeMavenRegistry(parts[0]),
			GroupID:    parts[1],
			ArtifactID: parts[2],
		}, nil
	default:
		return Maven{}, &InvalidIdentifierError{
			Input:  raw,
			Reason: "expected groupId:artifactId or registry:groupId:artifactId",
		}
	}
}

// normalizeMavenRegistry prepends https:// to schemeless registries and
// strips trailing slashes.
func normalizeMavenRegistry(registry string) string {
	if !strings.Contains(registry, "://") {
		registry = "https://" + registry
	}
	return strings.TrimRight(registry, "/")
}
