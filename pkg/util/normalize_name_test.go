package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accents and spaces", "café photo.png", "cafe_photo.png"},
		{"already safe", "report_2024.pdf", "report_2024.pdf"},
		{"precomposed and combining", "Zoë Ångström.txt", "Zoe_Angstrom.txt"},
		{"multiple spaces", "a  b c.txt", "a__b_c.txt"},
		{"non latin stripped", "файл.txt", ".txt"},
		{"fully non latin", "文件", ""},
		{"emoji dropped", "party 🎉.gif", "party_.gif"},
		{"tabs are not spaces", "a\tb", "a\tb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFileName(tt.in))
		})
	}
}

func TestNormalizeFileNameIsASCII(t *testing.T) {
	for _, in := range []string{"naïve façade.doc", "Ελληνικά.txt", "mañana 2.csv"} {
		out := NormalizeFileName(in)

		for _, r := range out {
			assert.LessOrEqual(t, r, rune(0x7f), "%q produced non ASCII %q", in, out)
			assert.NotEqual(t, ' ', r)
		}
	}
}
