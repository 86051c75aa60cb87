package evaluator

import (
	"errors"
	"testing"

	"github.com/RevCBH/skill-harness/internal/criteria"
)

func TestCheckSyntax(t *testing.T) {
	tests := []struct {
		name     string
		lang     criteria.Language
		code     string
		wantErr  bool
		wantLine int
	}{
		{
			name: "python balanced",
			lang: criteria.LanguagePython,
			code: "def f(a, b):\n    return {\"k\": [a, b]}\n",
		},
		{
			name: "python brackets in strings and comments",
			lang: criteria.LanguagePython,
			code: "s = \"(((\"  # ]]]\nt = 'it''s'\n",
		},
		{
			name: "python triple quoted string spans lines",
			lang: criteria.LanguagePython,
			code: "doc = \"\"\"\nunbalanced ( here\nand ' here\n\"\"\"\nx = 1\n",
		},
		{
			name:     "python unclosed paren",
			lang:     criteria.LanguagePython,
			code:     "x = 1\nprint((1, 2)\n",
			wantErr:  true,
			wantLine: 2,
		},
		{
			name:     "python unterminated string",
			lang:     criteria.LanguagePython,
			code:     "x = 1\ny = \"abc\nz = 2\n",
			wantErr:  true,
			wantLine: 2,
		},
		{
			name:     "python unterminated triple quote",
			lang:     criteria.LanguagePython,
			code:     "x = '''\nnever closed\n",
			wantErr:  true,
			wantLine: 1,
		},
		{
			name:     "mismatched closer",
			lang:     criteria.LanguagePython,
			code:     "x = [1, 2)\n",
			wantErr:  true,
			wantLine: 1,
		},
		{
			name:     "unexpected closer",
			lang:     criteria.LanguagePython,
			code:     "x = 1\n)\n",
			wantErr:  true,
			wantLine: 2,
		},
		{
			name: "typescript template literal with expression",
			lang: criteria.LanguageTypeScript,
			code: "const s = `value ${ {a: 1}.a } (done`;\n",
		},
		{
			name: "typescript comments",
			lang: criteria.LanguageTypeScript,
			code: "// it's fine (\n/* also { fine */\nconst x = f(1);\n",
		},
		{
			name:     "typescript unterminated template",
			lang:     criteria.LanguageTypeScript,
			code:     "const s = `abc\n",
			wantErr:  true,
			wantLine: 1,
		},
		{
			name: "typescript regex with escaped slash",
			lang: criteria.LanguageTypeScript,
			code: "const slug = path.replace(/\\//g, \"-\");\n",
		},
		{
			name: "typescript regex containing a quote",
			lang: criteria.LanguageTypeScript,
			code: "const clean = s.replace(/'/g, \"\");\n",
		},
		{
			name: "typescript regex with escaped paren",
			lang: criteria.LanguageTypeScript,
			code: "/\\(/.test(s);\nconst ok = /[/)]/.test(s);\n",
		},
		{
			name: "typescript regex after return",
			lang: criteria.LanguageTypeScript,
			code: "function isQuoted(s) {\n  return /\"/.test(s);\n}\n",
		},
		{
			name: "typescript division is not a regex",
			lang: criteria.LanguageTypeScript,
			code: "const avg = (a + b) / 2;\nconst q = n / d / 3; // (\n",
		},
		{
			name:     "typescript division keeps bracket checks",
			lang:     criteria.LanguageTypeScript,
			code:     "const x = 1;\nconst y = (a / (b);\n",
			wantErr:  true,
			wantLine: 2,
		},
		{
			name: "csharp verbatim string",
			lang: criteria.LanguageCSharp,
			code: "var path = @\"C:\\temp\\\";\nvar q = @\"say \"\"hi\"\"\";\n",
		},
		{
			name: "csharp interpolated string",
			lang: criteria.LanguageCSharp,
			code: "Console.WriteLine($\"{name} (\");\n",
		},
		{
			name: "go raw string",
			lang: criteria.LanguageGo,
			code: "s := `a \" b (`\nfmt.Println(s)\n",
		},
		{
			name: "java text block",
			lang: criteria.LanguageJava,
			code: "String s = \"\"\"\n  {\n  \"\"\";\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSyntax(tt.code, tt.lang)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
			if se.Line != tt.wantLine {
				t.Errorf("line = %d, want %d (%s)", se.Line, tt.wantLine, se.Message)
			}
		})
	}
}

func TestSyntaxLine(t *testing.T) {
	code := "a\n  bad(  \nc"
	if got := SyntaxLine(code, &SyntaxError{Line: 2}); got != "bad(" {
		t.Errorf("SyntaxLine = %q", got)
	}
	if got := SyntaxLine(code, &SyntaxError{Line: 9}); got != "" {
		t.Errorf("SyntaxLine out of range = %q", got)
	}
}
