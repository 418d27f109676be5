package customers

import "testing"

func TestFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{"", "", ""},
	}

	for _, tt := range tests {
		c := Customer{FirstName: tt.first, LastName: tt.last}
		if got := c.FullName(); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestIsValidRole(t *testing.T) {
	if !IsValidRole("ADMIN") || !IsValidRole("USER") {
		t.Errorf("known roles should be valid")
	}
	if IsValidRole("admin") {
		t.Errorf("roles are case sensitive")
	}
}
