package server

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/argon2"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func encodeArgon2id(password string, salt []byte, timeCost, memory uint32, threads uint8) string {
	hash := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, timeCost, threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

func TestVerifyToolPasswordPlain(t *testing.T) {
	if !verifyToolPassword("hunter2", "hunter2") {
		t.Fatal("matching plain password rejected")
	}
	if verifyToolPassword("hunter2", "hunter3") {
		t.Fatal("mismatched plain password accepted")
	}
	if verifyToolPassword("", "hunter2") {
		t.Fatal("empty password accepted")
	}
}

func TestVerifyToolPasswordArgon2id(t *testing.T) {
	salt := []byte("0123456789abcdef")
	encoded := encodeArgon2id("hunter2", salt, 1, 64*1024, 4)

	if !verifyToolPassword("hunter2", encoded) {
		t.Fatal("matching argon2id password rejected")
	}
	if verifyToolPassword("hunter3", encoded) {
		t.Fatal("mismatched argon2id password accepted")
	}
}

func TestVerifyToolPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"$argon2id$v=19$m=65536,t=1$short",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
		"$argon2id$v=19$m=,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$",
	}
	for _, encoded := range cases {
		if verifyToolPassword("hunter2", encoded) {
			t.Fatalf("malformed hash accepted: %q", encoded)
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	clk := &stubClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}
	limiter := newRateLimiter(2, time.Minute, clk)

	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.1") {
		t.Fatal("requests inside limit rejected")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("request over limit accepted")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("other client blocked by first client's window")
	}

	clk.advance(61 * time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("request after window expiry rejected")
	}
	if limiter.Allow("") {
		t.Fatal("empty key accepted")
	}
}
