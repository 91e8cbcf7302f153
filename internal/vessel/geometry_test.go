package vessel

import "testing"

func TestParseWellID(t *testing.T) {
	cases := []struct {
		id       string
		row, col int
		wantErr  bool
	}{
		{"A1", 0, 0, false},
		{"B02", 1, 1, false},
		{"H12", 7, 11, false},
		{"P24", 15, 23, false},
		{"", 0, 0, true},
		{"7", 0, 0, true},
		{"a1", 0, 0, true},
		{"A0", 0, 0, true},
		{"AX", 0, 0, true},
	}
	for _, tc := range cases {
		row, col, err := ParseWellID(tc.id)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseWellID(%q): expected error", tc.id)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWellID(%q): %v", tc.id, err)
			continue
		}
		if row != tc.row || col != tc.col {
			t.Errorf("ParseWellID(%q) = (%d, %d), want (%d, %d)", tc.id, row, col, tc.row, tc.col)
		}
	}
}

func TestIsEdge96(t *testing.T) {
	g := GeometryFor(FormatPlate96)
	cases := []struct {
		id   string
		edge bool
	}{
		{"A01", true},
		{"A06", true},
		{"H12", true},
		{"D01", true},
		{"C12", true},
		{"B02", false},
		{"D06", false},
		{"G11", false},
	}
	for _, tc := range cases {
		got, err := g.IsEdge(tc.id)
		if err != nil {
			t.Fatalf("IsEdge(%q): %v", tc.id, err)
		}
		if got != tc.edge {
			t.Errorf("IsEdge(%q) = %v, want %v", tc.id, got, tc.edge)
		}
	}
	if _, err := g.IsEdge("J01"); err == nil {
		t.Error("row J accepted on a 96 well plate")
	}
	if _, err := g.IsEdge("A13"); err == nil {
		t.Error("column 13 accepted on a 96 well plate")
	}
}

func TestFlaskHasNoEdge(t *testing.T) {
	g := GeometryFor(FormatFlaskT25)
	edge, err := g.IsEdge("")
	if err != nil {
		t.Fatalf("IsEdge: %v", err)
	}
	if edge {
		t.Error("flask reported an edge well")
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"plate96", "plate384", "flaskT25"} {
		f, err := ParseFormat(name)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", name, err)
		}
		if f.String() != name {
			t.Errorf("round trip %q -> %q", name, f.String())
		}
	}
	if _, err := ParseFormat("dish10cm"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestGeometryAreas(t *testing.T) {
	if g := GeometryFor(FormatPlate384); g.GrowthAreaCM2 >= GeometryFor(FormatPlate96).GrowthAreaCM2 {
		t.Error("384 well area should be smaller than 96 well area")
	}
	if g := GeometryFor(FormatFlaskT25); g.GrowthAreaCM2 != 25 {
		t.Errorf("T25 area = %v, want 25", g.GrowthAreaCM2)
	}
}
