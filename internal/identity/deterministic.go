package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a stable UUID from key with go-hashid. Keys must be prefixed
// per entity kind so different kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID returns the stable identifier for a fixture document.
func DocumentUUID(ctype, key string) uuid.UUID {
	return UUID("fieldkit:document:" + strings.ToLower(strings.TrimSpace(ctype)) + ":" + strings.TrimSpace(key))
}

// WidgetToken returns a short token that is stable for the same inputs and
// differs whenever any of them (including seq) differs.
func WidgetToken(prefix string, path []string, fieldKey string, seq uint64) string {
	parts := make([]string, 0, len(path)+3)
	parts = append(parts, "fieldkit:widget", prefix)
	parts = append(parts, path...)
	parts = append(parts, fieldKey, strconv.FormatUint(seq, 10))
	id := UUID(strings.Join(parts, "/"))
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}
