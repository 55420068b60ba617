package postgresql

import (
	"testing"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

type summary struct {
	Tokens  int        `json:"tokens"`
	Birth   *date.Date `json:"birth"`
	Missing []string   `json:"missing"`
}

func TestJSONCodecSymmetry(t *testing.T) {
	birth := date.Date{Time: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)}
	in := summary{Tokens: 3, Birth: &birth, Missing: []string{"a", "b"}}

	s, err := EncodeJSON(in)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	want := `{"tokens":3,"birth":"1990-05-17","missing":["a","b"]}`
	if s != want {
		t.Errorf("EncodeJSON = %s, want %s", s, want)
	}

	var out summary
	if err = DecodeJSON(s, &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out.Tokens != 3 || out.Birth == nil || out.Birth.String() != "1990-05-17" || len(out.Missing) != 2 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in   *string
		want string
	}{
		{nil, ""},
		{strPtr(""), ""},
		{strPtr("1990-05-17"), "1990-05-17"},
		{strPtr("1990-05-17 00:00:00+00:00"), "1990-05-17"},
		{strPtr("1990-05-17T00:00:00Z"), "1990-05-17"},
	}

	for _, tc := range testCases {
		d, err := ParseDate(tc.in)
		if err != nil {
			t.Fatalf("ParseDate(%v): %v", tc.in, err)
		}
		got := ""
		if d != nil {
			got = d.String()
		}
		if got != tc.want {
			t.Errorf("ParseDate = %q, want %q", got, tc.want)
		}
	}

	if _, err := ParseDate(strPtr("17/05/1990")); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestFormatDate(t *testing.T) {
	if FormatDate(nil) != nil {
		t.Error("nil date should format to nil")
	}
	d := date.Date{Time: time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)}
	if got := FormatDate(&d); got == nil || *got != "2001-02-03" {
		t.Errorf("FormatDate = %v", got)
	}
}

func strPtr(s string) *string { return &s }
