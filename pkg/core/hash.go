package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// HashUpdates computes a stable sha256 hash of the desired container specs.
// Container names are sorted and each spec is JSON-encoded (struct encoding is
// deterministic) so the same desired state always hashes identically. Used to
// fingerprint a configuration generation in logs and events.
func HashUpdates(updates map[string]ContainerSpec) string {
	if len(updates) == 0 {
		return ""
	}
	containerNames := make([]string, 0, len(updates))
	for containerName := range updates {
		containerNames = append(containerNames, containerName)
	}
	sort.Strings(containerNames)

	builder := strings.Builder{}
	for _, containerName := range containerNames {
		encoded, err := json.Marshal(updates[containerName])
		if err != nil {
			continue
		}
		builder.WriteString(containerName)
		builder.WriteByte(' ')
		builder.Write(encoded)
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}
