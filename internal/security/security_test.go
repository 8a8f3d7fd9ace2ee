package security

import (
	"strings"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	valid := map[string]string{
		"nq=f":  "NQ=F",
		" aapl": "AAPL",
		"^gspc": "^GSPC",
		"brk-b": "BRK-B",
		"brk.b": "BRK.B",
	}
	for in, want := range valid {
		got, err := NormalizeSymbol(in)
		if err != nil || got != want {
			t.Errorf("NormalizeSymbol(%q) = %q, %v", in, got, err)
		}
	}

	for _, bad := range []string{"", "   ", "NQ F", "<@123>", "=F", strings.Repeat("A", 21)} {
		if _, err := NormalizeSymbol(bad); err == nil {
			t.Errorf("NormalizeSymbol(%q) expected error", bad)
		}
	}
}

func TestValidateDate(t *testing.T) {
	if err := ValidateDate("2026-01-29"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	for _, bad := range []string{"2026-1-29", "01/29/2026", "2026-02-30", "tomorrow", ""} {
		if err := ValidateDate(bad); err == nil {
			t.Errorf("ValidateDate(%q) expected error", bad)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText("  breaking @everyone and @here ping <@&12345>  ")
	if strings.Contains(got, "@everyone") || strings.Contains(got, "@here") || strings.Contains(got, "<@&12345>") {
		t.Errorf("mentions not neutralized: %q", got)
	}
	if !strings.HasPrefix(got, "breaking") {
		t.Errorf("text not trimmed: %q", got)
	}

	long := strings.Repeat("x", MaxFreeTextLength+50)
	if n := len([]rune(SanitizeText(long))); n != MaxFreeTextLength {
		t.Errorf("sanitized length = %d", n)
	}
}

func TestMaskCredential(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"abc":              "***",
		"abcdefg":          "ab*****",
		"abcdefghijklmnop": "abcd********mnop",
	}
	for in, want := range cases {
		if got := MaskCredential(in); got != want {
			t.Errorf("MaskCredential(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskMap(t *testing.T) {
	in := map[string]interface{}{
		"discord": map[string]interface{}{
			"token":  "MTIzNDU2Nzg5MDEyMzQ1Njc4.GAbCdE.abcdefghijklmnopqrstuvwxyz12345",
			"prefix": "!",
		},
		"port": 8080,
	}
	out := MaskMap(in)
	discord := out["discord"].(map[string]interface{})
	if strings.Contains(discord["token"].(string), "GAbCdE") {
		t.Errorf("token not masked: %v", discord["token"])
	}
	if discord["prefix"] != "!" || out["port"] != 8080 {
		t.Errorf("non-secrets changed: %v", out)
	}
}

func TestMaskSecretsInText(t *testing.T) {
	text := "connecting with MTIzNDU2Nzg5MDEyMzQ1Njc4.GAbCdE.abcdefghijklmnopqrstuvwxyz12345 now"
	if got := MaskSecrets(text); strings.Contains(got, "GAbCdE") {
		t.Errorf("MaskSecrets left token: %q", got)
	}
}
