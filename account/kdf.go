package account

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

// Argon2 parameters. Mirrors the defaults the Rust implementation's
// `Argon2::default()` uses (m=19MiB, t=2, p=1), in the same spirit the
// teacher picks conservative-but-cheap defaults for its own KDF-adjacent
// config knobs.
const (
	argonTime    uint32 = 2
	argonMemory  uint32 = 19 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// ErrPasswordHash is returned when a stored hash is not a well-formed PHC
// string this package produced.
var ErrPasswordHash = errors.New("malformed password hash")

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("password does not match")

// Hash derives a PHC-formatted argon2id hash for password, suitable for
// storing as Account.PasswordHash.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}
	sum := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return encodePHC(salt, sum), nil
}

// Verify reports whether password matches the PHC-formatted hash produced
// by Hash. Returns ErrPasswordHash if hash is malformed and
// ErrPasswordMismatch if the password is wrong.
func Verify(hash, password string) error {
	params, salt, sum, err := decodePHC(hash)
	if err != nil {
		return err
	}
	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(sum)))
	if subtle.ConstantTimeCompare(candidate, sum) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

type phcParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// encodePHC renders a PHC string: $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<hash>
func encodePHC(salt, sum []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64encode(salt), b64encode(sum))
}

func decodePHC(hash string) (phcParams, []byte, []byte, error) {
	parts := strings.Split(hash, "$")
	// parts[0] == "" because hash starts with '$'
	if len(parts) != 6 || parts[1] != "argon2id" {
		return phcParams{}, nil, nil, ErrPasswordHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return phcParams{}, nil, nil, errors.Wrap(ErrPasswordHash, "version")
	}
	var p phcParams
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return phcParams{}, nil, nil, errors.Wrap(ErrPasswordHash, "params")
	}
	p.threads = uint8(threads)
	salt, err := b64decode(parts[4])
	if err != nil {
		return phcParams{}, nil, nil, errors.Wrap(ErrPasswordHash, "salt")
	}
	sum, err := b64decode(parts[5])
	if err != nil {
		return phcParams{}, nil, nil, errors.Wrap(ErrPasswordHash, "hash")
	}
	return p, salt, sum, nil
}
