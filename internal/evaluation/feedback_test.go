package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		Timestamp:    "2025-01-15T10:00:00Z",
		ModelVersion: "arena-scorer-v1",
		TotalScore:   82,
		Passed:       true,
		Dimensions: Dimensions{
			Correctness: Dimension{Score: 0.8, Weight: 0.4},
			Efficiency:  Dimension{Score: 0.6, Weight: 0.2},
			Quality:     Dimension{Score: 0.9, Weight: 0.2},
			Compliance:  Dimension{Score: 1.0, Weight: 0.2},
		},
		Feedback: Feedback{
			Strengths:     []string{"A", "B"},
			Weaknesses:    []string{"C"},
			SecurityAudit: SecurityAudit{Safe: true},
		},
	}
}

func TestFormatFeedback(t *testing.T) {
	text := FormatFeedback(sampleResult())

	expected := "**Total Score: 82/100** ✅\n" +
		"\n**Strengths:**\n" +
		"- A\n" +
		"- B\n" +
		"\n**Weaknesses:**\n" +
		"- C\n" +
		"\n**Dimension Scores:**\n" +
		"- Correctness: 80%\n" +
		"- Efficiency: 60%\n" +
		"- Quality: 90%\n" +
		"- Compliance: 100%"

	assert.Equal(t, expected, text)
}

func TestFeedbackRoundTrip(t *testing.T) {
	parsed := ParseFeedback(FormatFeedback(sampleResult()))

	assert.Equal(t, []string{"A", "B"}, parsed.Strengths)
	assert.Equal(t, []string{"C"}, parsed.Weaknesses)
	require.Len(t, parsed.Dimensions, 4)
	assert.Equal(t, DimensionPercent{"Correctness", 80}, parsed.Dimensions[0])
	assert.Equal(t, DimensionPercent{"Efficiency", 60}, parsed.Dimensions[1])
	assert.Equal(t, DimensionPercent{"Quality", 90}, parsed.Dimensions[2])
	assert.Equal(t, DimensionPercent{"Compliance", 100}, parsed.Dimensions[3])
}

func TestFormatFeedbackOmitsEmptySections(t *testing.T) {
	res := sampleResult()
	res.Feedback.Strengths = nil
	res.Feedback.Weaknesses = nil
	res.Passed = false
	res.TotalScore = 12

	text := FormatFeedback(res)
	assert.NotContains(t, text, "Strengths")
	assert.NotContains(t, text, "Weaknesses")
	assert.Contains(t, text, "**Total Score: 12/100** ❌")

	parsed := ParseFeedback(text)
	assert.Empty(t, parsed.Strengths)
	assert.Empty(t, parsed.Weaknesses)
	assert.Len(t, parsed.Dimensions, 4)
}

func TestParseFeedbackTolerance(t *testing.T) {
	// 标题大小写不敏感，小节内非 "-" 前缀的行忽略
	text := "**total SCORE: 70/100** ✅\n" +
		"\n**STRENGTHS:**\n" +
		"note to self, not an item\n" +
		"- kept item\n" +
		"\nweaknesses:\n" +
		"- only one\n" +
		"\nDimension scores:\n" +
		"* star bullet is ignored\n" +
		"- Correctness: 70%\n"

	parsed := ParseFeedback(text)
	assert.Equal(t, []string{"kept item"}, parsed.Strengths)
	assert.Equal(t, []string{"only one"}, parsed.Weaknesses)
	require.Len(t, parsed.Dimensions, 1)
	assert.Equal(t, DimensionPercent{"Correctness", 70}, parsed.Dimensions[0])
}

func TestPercentTruncation(t *testing.T) {
	// 向零截断：0.666 -> 66，而非四舍五入的 67
	assert.Equal(t, 66, percentOf(0.666))
	assert.Equal(t, 29, percentOf(0.29))
	assert.Equal(t, 0, percentOf(0.009))
	assert.Equal(t, 100, percentOf(1.0))
}
