package service

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "correct horse" {
		t.Fatalf("digest must not be the plaintext")
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Fatalf("expected a bcrypt digest, got %q", digest)
	}

	if !hasher.Verify("correct horse", digest) {
		t.Fatalf("correct password must verify")
	}
	if hasher.Verify("wrong", digest) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestBcryptHasher_SaltedDigestsDiffer(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	a, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password must differ")
	}
}

func TestBcryptHasher_VerifyRejectsGarbageDigest(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	if hasher.Verify("anything", "not-a-bcrypt-digest") {
		t.Fatalf("garbage digest must not verify")
	}
}
