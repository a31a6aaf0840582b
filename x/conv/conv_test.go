package conv

import "testing"

func TestItoa(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"}, {7, "7"}, {26, "26"}, {-1, "-1"}, {3_950_000, "3950000"},
	}
	for _, c := range cases {
		var b [20]byte
		if got := string(Itoa(b[:], c.n)); got != c.want {
			t.Errorf("Itoa(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestHex(t *testing.T) {
	var b [8]byte
	if got := string(Hex(b[:], 0x3A, 2)); got != "3A" {
		t.Fatalf("Hex byte = %q", got)
	}
	if got := string(Hex(b[:], 0x7, 4)); got != "0007" {
		t.Fatalf("Hex word = %q", got)
	}
	if got := Hex(b[:1], 0x7, 2); len(got) != 0 {
		t.Fatalf("short buffer = %q", got)
	}
}
