package validation

import (
	"strings"
	"testing"

	"cineplex/internal/shared/apperr"
)

type sample struct {
	Name  string `validate:"required"`
	Date  string `validate:"required,datetime=2006-01-02"`
	Count int    `validate:"min=1,max=10"`
	Kind  string `validate:"omitempty,oneof=a b"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sample{Name: "x", Date: "2024-06-01", Count: 3, Kind: "a"}); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	err := Struct(sample{Date: "06/01/2024", Count: 11, Kind: "c"})
	if err == nil {
		t.Fatalf("invalid input accepted")
	}
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("KindOf = %s, want validation", apperr.KindOf(err))
	}

	msg := err.Error()
	for _, want := range []string{"Name is required", "Date must match layout 2006-01-02", "Count must be at most 10", "Kind must be one of [a b]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not mention %q", msg, want)
		}
	}
}
