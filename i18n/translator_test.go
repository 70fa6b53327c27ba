package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", map[string]string{"key": "id"}); msg != "Missing key id" {
		t.Fatalf("unexpected english message: %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", map[string]string{"key": "id"}); msg == "Missing key id" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnexpectedFragments(t *testing.T) {
	cases := []struct {
		data map[string]string
		want string
	}{
		{map[string]string{"kind": "null"}, "Unexpected null"},
		{map[string]string{"kind": "string", "value": `"x"`}, `Unexpected string "x"`},
		{map[string]string{"kind": "string", "value": `"x"`, "allowed": `"a" | "b"`}, `Unexpected string "x" (allowed: "a" | "b")`},
	}
	for _, c := range cases {
		if got := T("invalid_enum", c.data); got != c.want {
			t.Fatalf("got %q want %q", got, c.want)
		}
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("custom", nil); got != "X:custom" {
		t.Fatalf("custom translator not used: %q", got)
	}
}
