package credential

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/hrkit/credauth/kdf"
)

// Tag prefixes every current-format encoded credential.
const Tag = "pbkdf2:"

// ErrMalformed is returned by Decode for values carrying the tag but not a
// valid payload. Verifiers treat it as "no match", never as a login abort.
var ErrMalformed = errors.New("credential: malformed encoded credential")

// Kind classifies a decoded credential.
type Kind int

const (
	// KindCurrent is the tagged salt||key format.
	KindCurrent Kind = iota
	// KindLegacy is a pre-hashing plaintext credential.
	KindLegacy
)

// Decoded is the parsed form of a stored credential. For KindCurrent, Salt
// and Key are set; for KindLegacy, Plain carries the raw stored string.
type Decoded struct {
	Kind  Kind
	Salt  []byte
	Key   []byte
	Plain string
}

// Encode concatenates salt and derived key, base64-encodes the result, and
// prefixes the format tag. It does not validate lengths; callers derive
// through [kdf] which fixes them.
func Encode(salt, key []byte) string {
	payload := make([]byte, 0, len(salt)+len(key))
	payload = append(payload, salt...)
	payload = append(payload, key...)
	return Tag + base64.StdEncoding.EncodeToString(payload)
}

// Decode parses a stored credential. Values without the tag classify as
// legacy plaintext and never error. Tagged values must decode to at least a
// full salt plus one key byte.
func Decode(stored string) (*Decoded, error) {
	if !strings.HasPrefix(stored, Tag) {
		return &Decoded{Kind: KindLegacy, Plain: stored}, nil
	}

	payload, err := base64.StdEncoding.DecodeString(stored[len(Tag):])
	if err != nil {
		return nil, ErrMalformed
	}
	if len(payload) <= kdf.SaltLength {
		return nil, ErrMalformed
	}

	return &Decoded{
		Kind: KindCurrent,
		Salt: payload[:kdf.SaltLength],
		Key:  payload[kdf.SaltLength:],
	}, nil
}
