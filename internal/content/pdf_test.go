package content

import "testing"

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf header", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3"), true},
		{"plain text", []byte("The cell membrane regulates transport."), false},
		{"empty", nil, false},
		{"header mid-stream", []byte("prefix %PDF-1.7"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPDF(tt.data); got != tt.want {
				t.Errorf("IsPDF = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPDFMissingFile(t *testing.T) {
	if _, err := ExtractPDF("does-not-exist.pdf"); err == nil {
		t.Error("expected error for missing file")
	}
}
