package notionmap

import (
	"testing"
)

func TestParseID(t *testing.T) {
	const want = "0123abcd-4567-89ab-cdef-0123456789ab"
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"dashed", want, false},
		{"undashed", "0123abcd456789abcdef0123456789ab", false},
		{"page url", "https://www.notion.so/acme/Articles-0123abcd456789abcdef0123456789ab", false},
		{"database url with view", "https://www.notion.so/0123abcd456789abcdef0123456789ab?v=ffff", false},
		{"garbage", "not-an-id", true},
		{"url without id", "https://www.notion.so/acme/Articles", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) expected error", tt.ref)
				}
				if !IsValidationError(err) {
					t.Errorf("Expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) unexpected error: %v", tt.ref, err)
			}
			if id.String() != want {
				t.Errorf("ParseID(%q) = %s, want %s", tt.ref, id, want)
			}
		})
	}
}
