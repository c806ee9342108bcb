package server

import (
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// verifyToolPassword checks an operator-supplied password against the
// configured credential. The credential is either an argon2id encoded hash
// or, for local development, the plain password; both paths compare in
// constant time.
func verifyToolPassword(password, configured string) bool {
	if strings.HasPrefix(configured, "$argon2id$") {
		return verifyArgon2id(password, configured)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(configured)) == 1
}

type argon2idParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func verifyArgon2id(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	params, ok := parseArgon2idParams(parts[3])
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}

func parseArgon2idParams(segment string) (argon2idParams, bool) {
	fields := strings.Split(segment, ",")
	if len(fields) != 3 {
		return argon2idParams{}, false
	}

	m, okM := strings.CutPrefix(fields[0], "m=")
	t, okT := strings.CutPrefix(fields[1], "t=")
	p, okP := strings.CutPrefix(fields[2], "p=")
	if !okM || !okT || !okP {
		return argon2idParams{}, false
	}

	m64, errM := strconv.ParseUint(m, 10, 32)
	t64, errT := strconv.ParseUint(t, 10, 32)
	p64, errP := strconv.ParseUint(p, 10, 8)
	if errM != nil || errT != nil || errP != nil {
		return argon2idParams{}, false
	}

	return argon2idParams{
		memory:  uint32(m64),
		time:    uint32(t64),
		threads: uint8(p64),
	}, true
}
