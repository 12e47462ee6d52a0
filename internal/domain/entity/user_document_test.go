package entity

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUser_DocumentLeavesSecretsOut(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	u := &User{
		ID:        "u-1",
		Email:     "ana@example.com",
		Password:  "$2a$10$hash",
		Name:      "Ana",
		Role:      RoleSeller,
		IsActive:  true,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, loc),
	}
	doc := u.Document()
	if doc.ID != u.ID || doc.Email != u.Email || doc.Role != RoleSeller {
		t.Fatalf("document = %+v", doc)
	}
	if doc.CreatedAt.Location() != time.UTC || !doc.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("created_at = %v, want %v in UTC", doc.CreatedAt, u.CreatedAt)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "hash") || strings.Contains(string(b), "avatar_url") {
		t.Fatalf("unexpected fields in %s", b)
	}
}
