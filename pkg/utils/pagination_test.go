package utils

import "testing"

func TestPageParamsDefaults(t *testing.T) {
	offset, limit, err := PageParams("", "")
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0 || limit != defaultPageSize {
		t.Errorf("got offset=%d limit=%d", offset, limit)
	}
}

func TestPageParamsComputesOffset(t *testing.T) {
	offset, limit, err := PageParams("3", "25")
	if err != nil {
		t.Fatal(err)
	}
	if offset != 50 || limit != 25 {
		t.Errorf("got offset=%d limit=%d", offset, limit)
	}
}

func TestPageParamsRejectsBadValues(t *testing.T) {
	for _, tc := range []struct{ page, size string }{
		{"0", ""},
		{"-1", "10"},
		{"abc", ""},
		{"1", "0"},
		{"1", "-5"},
		{"1", "abc"},
	} {
		if _, _, err := PageParams(tc.page, tc.size); err == nil {
			t.Errorf("expected error for page=%q size=%q", tc.page, tc.size)
		}
	}
}
