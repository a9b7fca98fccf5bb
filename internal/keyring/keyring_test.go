package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetAnonKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAnonKey("eyJhbGciOi.test"); err != nil {
		t.Fatalf("SetAnonKey() failed: %v", err)
	}

	got, err := GetAnonKey()
	if err != nil {
		t.Fatalf("GetAnonKey() failed: %v", err)
	}
	if got != "eyJhbGciOi.test" {
		t.Errorf("GetAnonKey() = %q, want %q", got, "eyJhbGciOi.test")
	}
}

func TestSetAnonKeyEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAnonKey(""); err == nil {
		t.Error("SetAnonKey(\"\") should return an error")
	}
}

func TestGetAnonKeyNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteAnonKey()

	if _, err := GetAnonKey(); err != ErrNotFound {
		t.Errorf("GetAnonKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteAnonKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetAnonKey("key"); err != nil {
		t.Fatalf("SetAnonKey() failed: %v", err)
	}
	if err := DeleteAnonKey(); err != nil {
		t.Fatalf("DeleteAnonKey() failed: %v", err)
	}
	if err := DeleteAnonKey(); err != ErrNotFound {
		t.Errorf("second DeleteAnonKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestResolveAnonKey(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteAnonKey()

	if got := ResolveAnonKey(""); got != "" {
		t.Errorf("ResolveAnonKey(\"\") with empty keyring = %q, want empty", got)
	}

	if err := SetAnonKey("stored"); err != nil {
		t.Fatalf("SetAnonKey() failed: %v", err)
	}
	if got := ResolveAnonKey(""); got != "stored" {
		t.Errorf("ResolveAnonKey(\"\") = %q, want %q", got, "stored")
	}
	if got := ResolveAnonKey("flag"); got != "flag" {
		t.Errorf("ResolveAnonKey(\"flag\") = %q, want %q", got, "flag")
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring")
	}
}
