package user

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPublic_DropsPasswordHash(t *testing.T) {
	u := User{ID: 7, Name: "Ana", Email: "ana@x.com", PasswordHash: "$2a$10$secret", CreatedAt: time.Now()}

	b, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if strings.Contains(string(b), "passwordHash") || strings.Contains(string(b), "secret") {
		t.Fatalf("public user leaks hash: %s", b)
	}
}

func TestNextID(t *testing.T) {
	now := time.UnixMilli(1000)

	tests := []struct {
		last int64
		want int64
	}{
		{0, 1000},
		{999, 1000},
		{1000, 1001},
		{5000, 5001},
	}

	for _, tt := range tests {
		if got := NextID(now, tt.last); got != tt.want {
			t.Fatalf("NextID(1000, %d) = %d, want %d", tt.last, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@X.COM "); got != "ana@x.com" {
		t.Fatalf("got %q", got)
	}
}
