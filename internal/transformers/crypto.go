package transformers

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"golang.org/x/crypto/bcrypt"
)

const (
	NameHash      = "hash"
	NameAuthToken = "authtoken"
	NameMD5       = "md5"
)

type hashTransformer struct {
	cost int
}

func newHash(_ schema.FieldDefinition, settings Settings) (Transformer, error) {
	cost := settings.HashCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &hashTransformer{cost: cost}, nil
}

func (h *hashTransformer) Name() string { return NameHash }

// BeforeSave hashes the value with bcrypt. Values that already are bcrypt
// hashes are kept so saving an unchanged document does not rehash.
func (h *hashTransformer) BeforeSave(value any) (any, error) {
	raw := document.String(value)
	if raw == "" {
		return "", nil
	}
	if _, err := bcrypt.Cost([]byte(raw)); err == nil {
		return raw, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return value, err
	}
	return string(hashed), nil
}

// CompareHash reports whether plain matches a value stored by the hash
// transformer.
func CompareHash(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

type authTokenTransformer struct {
	size int
}

func newAuthToken(_ schema.FieldDefinition, settings Settings) (Transformer, error) {
	size := settings.TokenBytes
	if size <= 0 {
		size = 32
	}
	return &authTokenTransformer{size: size}, nil
}

func (a *authTokenTransformer) Name() string { return NameAuthToken }

// BeforeSave ignores value and returns a fresh random token.
func (a *authTokenTransformer) BeforeSave(any) (any, error) {
	buf := make([]byte, a.size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type md5Transformer struct{}

func newMD5(schema.FieldDefinition, Settings) (Transformer, error) {
	return md5Transformer{}, nil
}

func (md5Transformer) Name() string { return NameMD5 }

func (md5Transformer) BeforeSave(value any) (any, error) {
	return md5Hex(value), nil
}

func (md5Transformer) BeforeFind(value any) (any, error) {
	return md5Hex(value), nil
}

func md5Hex(value any) string {
	raw := document.String(value)
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
