package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/Marcel-mosha/task-manager/config"
)

func TestDefaultPasswordPolicy(t *testing.T) {
	policy := DefaultPasswordPolicy(config.PasswordConfig{MinLength: 8})

	tests := []struct {
		name     string
		password string
		username string
		email    string
		wantErr  bool
	}{
		{"strong password", "Str0ngPass!", "alice", "a@x.com", false},
		{"exactly min length", "abcdefg1", "alice", "a@x.com", false},
		{"too short", "Ab1!xyz", "alice", "a@x.com", true},
		{"exactly max length", strings.Repeat("x", 71) + "1", "alice", "a@x.com", false},
		{"longer than bcrypt limit", strings.Repeat("x", 72) + "1", "alice", "a@x.com", true},
		{"entirely numeric", "1234567890", "alice", "a@x.com", true},
		{"contains username", "my-alice-pass", "alice", "a@x.com", true},
		{"username contains password", "password", "passwords", "p@x.com", true},
		{"contains email local part", "hello.alice99x", "bob", "alice99@x.com", true},
		{"short attr not matched", "abcdefgh", "ab", "ab@x.com", false},
		{"case insensitive match", "MyALICEpass", "alice", "a@x.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password, tt.username, tt.email)
			if tt.wantErr && !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("expected ErrWeakPassword, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPasswordPolicyConfigurableMinLength(t *testing.T) {
	policy := DefaultPasswordPolicy(config.PasswordConfig{MinLength: 12})

	if err := policy.Validate("elevenchars", "alice", "a@x.com"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword under raised minimum, got %v", err)
	}
	if err := policy.Validate("twelve-chars", "alice", "a@x.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPasswordPolicyCustomValidators(t *testing.T) {
	rejectAll := func(_, _, _ string) error {
		return errors.New("nope")
	}
	policy := NewPasswordPolicy(rejectAll)

	if err := policy.Validate("anything", "alice", "a@x.com"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword from custom validator, got %v", err)
	}

	empty := NewPasswordPolicy()
	if err := empty.Validate("x", "alice", "a@x.com"); err != nil {
		t.Fatalf("empty policy must accept everything: %v", err)
	}
}
