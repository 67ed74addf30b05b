package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used for new hashes. They are embedded in every stored
// blob, so changing them only affects hashes produced afterwards; existing
// hashes stay verifiable.
const (
	argonMemory  uint32 = 64 * 1024
	argonTime    uint32 = 3
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

// argonParams holds parameters and raw values decoded from a stored hash.
type argonParams struct {
	version uint32
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	digest  []byte
}

// HashPassword derives an Argon2id hash of password with a fresh random salt
// and returns it in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<digest_base64>
//
// The base64 encoding uses the standard alphabet without padding, the
// convention of the Argon2 reference implementation. The only failure mode is
// the entropy source.
func HashPassword(password []byte) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword re-derives the digest using the parameters embedded in
// encoded and compares it to the stored digest in constant time. A malformed
// stored blob verifies as false rather than returning a distinct error, so
// corrupt stored data is indistinguishable from a wrong password.
func VerifyPassword(password []byte, encoded string) bool {
	params, err := decodePHC(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey(password, params.salt, params.time, params.memory, params.threads, uint32(len(params.digest)))
	return subtle.ConstantTimeCompare(candidate, params.digest) == 1
}

// decodePHC parses an argon2id PHC hash string. Expected format, with six
// dollar-delimited segments (the first empty):
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<digest>
func decodePHC(encoded string) (*argonParams, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("expected 5-segment PHC string, got %d segments", len(parts)-1)
	}

	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported variant %q", parts[1])
	}

	version, err := parseKV(parts[2], "v")
	if err != nil {
		return nil, err
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	kvs, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}
	memory, ok1 := kvs["m"]
	time, ok2 := kvs["t"]
	threads, ok3 := kvs["p"]
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("missing m/t/p in parameter segment %q", parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("invalid salt base64: %v", err)
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("invalid digest base64: %v", err)
	}

	return &argonParams{
		version: uint32(version),
		memory:  uint32(memory),
		time:    uint32(time),
		threads: uint8(threads),
		salt:    salt,
		digest:  digest,
	}, nil
}

// parseKV parses a "key=value" string and returns the uint64 value.
func parseKV(s, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected %q prefix in %q", prefix, s)
	}
	return strconv.ParseUint(s[len(prefix):], 10, 64)
}

// parseParams splits "m=65536,t=3,p=2" into a map.
func parseParams(s string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, kv := range strings.Split(s, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed param %q", kv)
		}
		v, err := strconv.ParseUint(kv[eq+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric value in %q: %v", kv, err)
		}
		out[kv[:eq]] = v
	}
	return out, nil
}
