package push

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/transitlk/notifier/internal/model"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate VAPID keys: %v", err)
	}

	if pub == "" {
		t.Error("expected non-empty public key")
	}
	if priv == "" {
		t.Error("expected non-empty private key")
	}

	// Public key should be base64url-encoded, 65 bytes uncompressed P-256 point
	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("decode public key: %v", err)
	}
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}

	// Private key should be base64url-encoded, 32 bytes P-256 scalar
	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	if err != nil {
		t.Fatalf("decode private key: %v", err)
	}
	if len(privBytes) != 32 {
		t.Errorf("private key length = %d, want 32", len(privBytes))
	}

	// A second generation must produce a different key pair.
	pub2, _, _ := GenerateVAPIDKeys()
	if pub == pub2 {
		t.Error("expected different keys on second generation")
	}
}

func TestSendMalformedNoNetworkAttempt(t *testing.T) {
	s := NewService(Config{VAPIDPublicKey: "pub", VAPIDPrivateKey: "priv"})

	cases := []model.Subscription{
		{},
		{Endpoint: "https://push.example.com/1"},
		{Endpoint: "https://push.example.com/1", Keys: model.SubscriptionKeys{P256dh: "p"}},
		{Keys: model.SubscriptionKeys{P256dh: "p", Auth: "a"}},
	}
	for i, sub := range cases {
		err := s.Send(&sub, []byte(`{}`))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("case %d: err = %v, want ErrMalformed", i, err)
		}
	}
}
