package dbthttpx

import (
	"strings"
)

const (
	semanticLayerLabel = "semantic-layer"
	metadataLabel      = "metadata"
)

// Connection carries the resolved service endpoints plus the credentials
// shared by every request of the process. It is read-only after resolution.
type Connection struct {
	Host                  string
	SemanticLayerEndpoint string
	MetadataEndpoint      string
	RemoteMcpEndpoint     string
	EnvironmentId         int64
	Token                 string
}

// ResolveConnection derives the fully qualified service endpoints from an
// account host. The explicit multicellPrefix always wins; a prefix embedded
// in the host itself is honoured only when no explicit prefix was supplied
// and the host already carries the semantic-layer service label, so that
// both spellings resolve to the same canonical form.
func ResolveConnection(host, multicellPrefix string, environmentId int64, token string) (*Connection, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return nil, configError{"host must be specified"}
	}
	if token == "" {
		return nil, configError{"token must be specified"}
	}
	if environmentId <= 0 {
		return nil, configError{"environment id must be a positive integer"}
	}

	if strings.HasPrefix(host, "localhost") {
		// Local gateways serve both APIs from a single host.
		return &Connection{
			Host:                  host,
			SemanticLayerEndpoint: "http://" + host,
			MetadataEndpoint:      "http://" + host,
			RemoteMcpEndpoint:     "http://" + host + "/mcp/sse",
			EnvironmentId:         environmentId,
			Token:                 token,
		}, nil
	}

	var slHost, mdHost string
	if multicellPrefix != "" {
		slHost = multicellPrefix + "." + semanticLayerLabel + "." + host
		mdHost = multicellPrefix + "." + metadataLabel + "." + host
	} else if cell, base, ok := splitEmbeddedPrefix(host); ok {
		host = base
		if cell != "" {
			slHost = cell + "." + semanticLayerLabel + "." + base
			mdHost = cell + "." + metadataLabel + "." + base
		} else {
			slHost = semanticLayerLabel + "." + base
			mdHost = metadataLabel + "." + base
		}
	} else {
		slHost = semanticLayerLabel + "." + host
		mdHost = metadataLabel + "." + host
	}

	// The remote tool endpoint is served from the platform host itself,
	// not from a per-service subdomain.
	return &Connection{
		Host:                  host,
		SemanticLayerEndpoint: "https://" + slHost,
		MetadataEndpoint:      "https://" + mdHost,
		RemoteMcpEndpoint:     "https://" + host + "/mcp/sse",
		EnvironmentId:         environmentId,
		Token:                 token,
	}, nil
}

// splitEmbeddedPrefix detects hosts that already carry the semantic-layer
// service label, optionally preceded by a single cell prefix label, and
// returns the cell prefix and the bare account host.
func splitEmbeddedPrefix(host string) (cell string, base string, ok bool) {
	labels := strings.Split(host, ".")

	if labels[0] == semanticLayerLabel && len(labels) >= 3 {
		return "", strings.Join(labels[1:], "."), true
	}

	if len(labels) >= 4 && labels[1] == semanticLayerLabel {
		return labels[0], strings.Join(labels[2:], "."), true
	}

	return "", "", false
}
