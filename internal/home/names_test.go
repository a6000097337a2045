package home

import "testing"

func TestFoldName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jay’s Office", "jay's office"},
		{"Jay‘s Office", "jay's office"},
		{"Jay's Office", "jay's office"},
		{"  KITCHEN ", "kitchen"},
	}

	for _, tt := range tests {
		if got := FoldName(tt.input); got != tt.want {
			t.Errorf("FoldName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSameName_QuoteSymmetry(t *testing.T) {
	stored := "Jay’s Office"
	for _, q := range []string{"jay’s office", "jay's office", "JAY‘S OFFICE"} {
		if !SameName(stored, q) {
			t.Errorf("SameName(%q, %q) = false", stored, q)
		}
	}
}

func TestContainsName(t *testing.T) {
	if !ContainsName("Office Spotlights", "spot") {
		t.Error("ContainsName should match substring case-insensitively")
	}
	if ContainsName("Office", "kitchen") {
		t.Error("ContainsName matched unrelated name")
	}
}
