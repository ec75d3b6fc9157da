package auth

import (
	"strings"
	"testing"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !strings.HasPrefix(token, TokenPrefix) {
		t.Errorf("token %q missing prefix", MaskToken(token))
	}
	if !IsValidTokenFormat(token) {
		t.Error("IsValidTokenFormat() = false for a generated token")
	}

	hash, err := HashToken(token)
	if err != nil {
		t.Fatalf("HashToken() error = %v", err)
	}
	if !VerifyToken(token, hash) {
		t.Error("VerifyToken() = false for matching token")
	}
	if VerifyToken(TokenPrefix+strings.Repeat("0", TokenLength*2), hash) {
		t.Error("VerifyToken() = true for a different token")
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateToken()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two generated tokens are identical")
	}
}

func TestIsValidTokenFormat(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{TokenPrefix + strings.Repeat("ab", TokenLength), true},
		{"wrong_" + strings.Repeat("ab", TokenLength), false},
		{TokenPrefix + "short", false},
		{TokenPrefix + strings.Repeat("zz", TokenLength), false}, // not hex
		{"", false},
	}
	for _, c := range cases {
		if got := IsValidTokenFormat(c.token); got != c.want {
			t.Errorf("IsValidTokenFormat(%q) = %v, want %v", MaskToken(c.token), got, c.want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	token := TokenPrefix + strings.Repeat("ab", TokenLength)
	masked := MaskToken(token)
	if strings.Contains(masked, strings.Repeat("ab", TokenLength)) {
		t.Error("MaskToken() leaked the full secret")
	}
	if MaskToken("tiny") != "****" {
		t.Errorf("MaskToken(tiny) = %q", MaskToken("tiny"))
	}
}
