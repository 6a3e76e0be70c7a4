package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mbaudry/moustass-web/internal/errs"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := RandBytes(KeySize)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	return key
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	for _, pt := range [][]byte{
		[]byte("balance: 1000"),
		[]byte(""),
		[]byte("exactly-16-bytes"), // full block, forces a whole padding block
		bytes.Repeat([]byte{0xA5}, 1<<16),
	} {
		env, err := Seal(pt, key)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		got, err := Open(env, key)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(pt))
		}
	}
}

func TestSeal_FreshIVPerCall(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	pt := []byte("same plaintext")
	e1, err := Seal(pt, key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	e2, err := Seal(pt, key)
	if err != nil {
		t.Fatalf("Seal(2): %v", err)
	}
	if e1 == e2 {
		t.Fatalf("two envelopes of the same plaintext are equal, iv not randomized")
	}
	for _, e := range []string{e1, e2} {
		got, err := Open(e, key)
		if err != nil || !bytes.Equal(got, pt) {
			t.Fatalf("Open after reseal: %v", err)
		}
	}
}

func TestSeal_BadKeyLength(t *testing.T) {
	t.Parallel()

	if _, err := Seal([]byte("x"), []byte("short")); err == nil {
		t.Fatalf("Seal accepted a short key")
	}
}

func TestOpen_MalformedEnvelopes(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	env, err := Seal([]byte("payload"), key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	cases := map[string]string{
		"no separator":    strings.ReplaceAll(env, ":", ""),
		"bad iv hex":      "zz" + env[2:],
		"short iv":        "00ff:" + strings.SplitN(env, ":", 2)[1],
		"odd ciphertext":  env + "0",
		"empty":           "",
		"only separator":  ":",
		"truncated block": env[:len(env)-2],
	}
	for name, bad := range cases {
		if _, err := Open(bad, key); !errors.Is(err, errs.ErrDecrypt) {
			t.Fatalf("%s: want ErrDecrypt, got %v", name, err)
		}
	}

	if _, err := Open(env, []byte("short")); !errors.Is(err, errs.ErrDecrypt) {
		t.Fatalf("short key: want ErrDecrypt, got %v", err)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	pt := []byte("sensitive content")
	env, err := Seal(pt, key)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	other := testKey(t)
	got, err := Open(env, other)
	// CBC with a wrong key either trips padding validation or yields garbage;
	// the digest check downstream catches the garbage case.
	if err == nil {
		if bytes.Equal(got, pt) {
			t.Fatalf("wrong key decrypted to the original plaintext")
		}
		if VerifyDigest(got, Digest(pt)) {
			t.Fatalf("garbage plaintext passed digest verification")
		}
	} else if !errors.Is(err, errs.ErrDecrypt) {
		t.Fatalf("want ErrDecrypt, got %v", err)
	}
}
