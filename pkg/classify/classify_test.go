package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Verdict
	}{
		// Empty and whitespace
		{"empty", "", VerdictSkip},
		{"whitespace only", "   \t ", VerdictSkip},

		// Numbers
		{"integer", "42", VerdictSkip},
		{"decimal", "123.45", VerdictSkip},
		{"negative", "-17", VerdictSkip},
		{"comma grouped", "1,234,567", VerdictSkip},
		{"percent", "99.9%", VerdictSkip},

		// Dates and times
		{"iso date", "2024-01-15", VerdictSkip},
		{"slash date", "15/01/2024", VerdictSkip},
		{"short year date", "1/15/24", VerdictSkip},
		{"ideographic date", "2024年1月15日", VerdictSkip},
		{"clock time", "14:30", VerdictSkip},
		{"clock time seconds", "14:30:05", VerdictSkip},
		{"clock time am pm", "2:30 PM", VerdictSkip},

		// URLs, emails, phones
		{"http url", "http://example.com/path", VerdictSkip},
		{"https url", "https://x.com", VerdictSkip},
		{"email", "alice@example.com", VerdictSkip},
		{"phone", "+1 (555) 123-4567", VerdictSkip},
		{"short digit run is numeric not phone", "12345", VerdictSkip},

		// Symbols and currency
		{"symbols only", "***---***", VerdictSkip},
		{"dollar amount", "$1,234.56", VerdictSkip},
		{"yen suffix", "1,000円", VerdictSkip},

		// Short ASCII tokens and identifiers
		{"single word", "OK", VerdictSkip},
		{"two words", "Submit Form", VerdictSkip},
		{"camel case", "TotalRevenue", VerdictSkip},
		{"snake case", "unit_price_total", VerdictSkip},

		// Paths and formulas
		{"unix path", "/var/log/app.log", VerdictSkip},
		{"windows path", `C:\Users\alice\report.xlsx`, VerdictSkip},
		{"formula", "=SUM(A1:A10)", VerdictSkip},

		// Translatable prose
		{"english sentence", "Hello, how are you today?", VerdictTranslatable},
		{"japanese sentence", "これは翻訳が必要な文章です。", VerdictTranslatable},
		{"three word phrase", "Please review carefully now", VerdictTranslatable},
		{"mixed script", "売上は前年比で20%増加しました", VerdictTranslatable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	inputs := []string{"", "123.45", "https://x.com", "Hello, how are you today?", "2024年1月15日"}
	for _, in := range inputs {
		first := Classify(in)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Classify(in), "input %q", in)
		}
	}
}

func TestTranslatable(t *testing.T) {
	assert.False(t, Translatable("123.45"))
	assert.True(t, Translatable("Hello, how are you today?"))
}
