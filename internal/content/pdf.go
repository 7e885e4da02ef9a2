package content

import (
	"bytes"
	"fmt"
	"os/exec"
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data carries the PDF file header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ExtractPDF converts a PDF file to plain text with pdftotext
// (poppler-utils). The result goes through Validate like any other
// source text.
func ExtractPDF(path string) (string, error) {
	out, err := exec.Command("pdftotext", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext %s: %w", path, err)
	}
	return string(out), nil
}
