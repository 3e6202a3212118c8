package mathx

import "testing"

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
		{-1, 32, -1},
		{31, 32, 0},
		{32, 32, 1},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.want {
			t.Errorf("FloorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMod(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{0, 16, 0},
		{15, 16, 15},
		{16, 16, 0},
		{-1, 16, 15},
		{-16, 16, 0},
		{-17, 16, 15},
		{-1, 32, 31},
	}
	for _, c := range cases {
		if got := Mod(c.a, c.b); got != c.want {
			t.Errorf("Mod(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestFloorDivModIdentity(t *testing.T) {
	// a == FloorDiv(a,b)*b + Mod(a,b) for all a.
	for a := -100; a <= 100; a++ {
		for _, b := range []int{2, 16, 32} {
			if got := FloorDiv(a, b)*b + Mod(a, b); got != a {
				t.Fatalf("identity broken for a=%d b=%d: %d", a, b, got)
			}
			if m := Mod(a, b); m < 0 || m >= b {
				t.Fatalf("Mod(%d,%d) = %d out of range", a, b, m)
			}
		}
	}
}

func TestClampInt(t *testing.T) {
	if ClampInt(5, 1, 10) != 5 || ClampInt(-3, 1, 10) != 1 || ClampInt(99, 1, 10) != 10 {
		t.Fatalf("ClampInt wrong")
	}
}

func TestHash2_Deterministic(t *testing.T) {
	if Hash2(1, 2, 3) != Hash2(1, 2, 3) {
		t.Fatalf("Hash2 not deterministic")
	}
	if Hash2(1, 2, 3) == Hash2(2, 2, 3) {
		t.Fatalf("Hash2 ignores seed")
	}
	if Hash2(1, 2, 3) == Hash2(1, 3, 2) {
		t.Fatalf("Hash2 symmetric in x/z")
	}
}

func TestHash3_Deterministic(t *testing.T) {
	if Hash3(1, 2, 3, 4) != Hash3(1, 2, 3, 4) {
		t.Fatalf("Hash3 not deterministic")
	}
	if Hash3(1, 2, 3, 4) == Hash3(1, 2, 4, 3) {
		t.Fatalf("Hash3 symmetric in y/z")
	}
}
