package domain_test

import (
	"testing"

	"github.com/neomorfeo/gatherly/internal/domain"
)

func TestPage_Offset(t *testing.T) {
	cases := []struct {
		from, size, want int
	}{
		{0, 10, 0},
		{10, 10, 10},
		{25, 10, 20}, // truncated to the page boundary
		{3, 0, 0},
	}
	for _, tc := range cases {
		p := domain.Page{From: tc.from, Size: tc.size}
		if got := p.Offset(); got != tc.want {
			t.Errorf("Page{%d,%d}.Offset() = %d, want %d", tc.from, tc.size, got, tc.want)
		}
	}
}

func TestPage_Validate(t *testing.T) {
	if err := (domain.Page{From: 0, Size: 10}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (domain.Page{From: -1, Size: 10}).Validate(); err == nil {
		t.Error("negative from should fail")
	}
	if err := (domain.Page{From: 0, Size: 0}).Validate(); err == nil {
		t.Error("zero size should fail")
	}
}

func TestOptional(t *testing.T) {
	var none domain.Optional[string]
	if _, ok := none.Get(); ok {
		t.Error("zero Optional should be absent")
	}

	some := domain.Some("e-1")
	v, ok := some.Get()
	if !ok || v != "e-1" {
		t.Errorf("Get() = %q, %v", v, ok)
	}
}
