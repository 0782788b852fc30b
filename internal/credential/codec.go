package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrEmptyPassword     = errors.New("password must not be empty")
	ErrInvalidSalt       = errors.New("invalid password salt encoding")
	ErrInvalidParams     = errors.New("invalid password hash parameters")
	ErrUnsupportedDigest = errors.New("unsupported password hash digest")
)

const (
	SaltBytes     = 16
	MinIterations = 10000

	DigestSHA256 = "sha256"
	DigestSHA512 = "sha512"

	paramsPrefix = "pbkdf2-"
)

// LegacyParams are the parameters digests were created with before the
// parameters were stored next to each digest.
var LegacyParams = Params{Digest: DigestSHA512, Iterations: 10000, KeyLen: 64}

// Params selects the PBKDF2 variant used to derive a digest.
type Params struct {
	Digest     string
	Iterations int
	KeyLen     int
}

func (p Params) Validate() error {
	if _, err := p.hashFunc(); err != nil {
		return err
	}
	if p.Iterations < MinIterations {
		return fmt.Errorf("%w: iterations %d below minimum %d", ErrInvalidParams, p.Iterations, MinIterations)
	}
	if p.KeyLen < 32 {
		return fmt.Errorf("%w: key length %d too short", ErrInvalidParams, p.KeyLen)
	}
	return nil
}

// String encodes the parameters as pbkdf2-<digest>$<iterations>$<keylen>.
func (p Params) String() string {
	return paramsPrefix + p.Digest + "$" + strconv.Itoa(p.Iterations) + "$" + strconv.Itoa(p.KeyLen)
}

func (p Params) hashFunc() (func() hash.Hash, error) {
	switch p.Digest {
	case DigestSHA512:
		return sha512.New, nil
	case DigestSHA256:
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDigest, p.Digest)
	}
}

// ParseParams decodes a value produced by Params.String. An empty string
// yields LegacyParams.
func ParseParams(s string) (Params, error) {
	if s == "" {
		return LegacyParams, nil
	}
	if !strings.HasPrefix(s, paramsPrefix) {
		return Params{}, fmt.Errorf("%w: %q", ErrInvalidParams, s)
	}
	parts := strings.Split(strings.TrimPrefix(s, paramsPrefix), "$")
	if len(parts) != 3 {
		return Params{}, fmt.Errorf("%w: %q", ErrInvalidParams, s)
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil {
		return Params{}, fmt.Errorf("%w: iterations: %v", ErrInvalidParams, err)
	}
	keyLen, err := strconv.Atoi(parts[2])
	if err != nil {
		return Params{}, fmt.Errorf("%w: key length: %v", ErrInvalidParams, err)
	}
	p := Params{Digest: parts[0], Iterations: iterations, KeyLen: keyLen}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Codec derives and verifies salted password digests. It is safe for
// concurrent use.
type Codec struct {
	params Params
}

func NewCodec(params Params) (*Codec, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Codec{params: params}, nil
}

// Params returns the parameters new digests are created with.
func (c *Codec) Params() Params {
	return c.params
}

// GenerateSalt returns 128 random bits, base64 encoded.
func GenerateSalt() (string, error) {
	b := make([]byte, SaltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Hash derives the digest of password under the codec's current parameters.
func (c *Codec) Hash(password, salt string) (string, error) {
	return derive(c.params, password, salt)
}

// Verify recomputes the digest of password with the parameters recorded for
// the stored digest and compares the two in constant time.
func (c *Codec) Verify(password, salt, digest, params string) (bool, error) {
	p, err := ParseParams(params)
	if err != nil {
		return false, err
	}
	candidate, err := derive(p, password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1, nil
}

// NeedsRehash reports whether a digest stored with params was derived with
// anything other than the codec's current parameters.
func (c *Codec) NeedsRehash(params string) bool {
	p, err := ParseParams(params)
	if err != nil {
		return true
	}
	return p != c.params
}

// derive feeds the encoded salt text to the KDF, which keeps digests written
// by earlier deployments verifiable.
func derive(p Params, password, salt string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidSalt
	}
	h, err := p.hashFunc()
	if err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), p.Iterations, p.KeyLen, h)
	return base64.StdEncoding.EncodeToString(key), nil
}
