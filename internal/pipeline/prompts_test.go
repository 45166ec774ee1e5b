package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

func TestExtractionPrompt_NamesAllFiveKeys(t *testing.T) {
	t.Parallel()

	p := ExtractionPrompt("some cv text")
	for _, key := range []string{KeyObjective, KeyExperiences, KeySkills, KeyEducation, KeyCertificate} {
		assert.Contains(t, p, key)
	}
	assert.Contains(t, p, "some cv text")
	assert.Contains(t, p, "return 0")
}

func TestCorrectionPrompt_EmbedsParagraph(t *testing.T) {
	t.Parallel()

	p := CorrectionPrompt("teh quick brwn fox")
	assert.Contains(t, p, "teh quick brwn fox")
	assert.Contains(t, p, "returning only the fully corrected text")
}

func TestEvaluationPrompt_SkipsAbsentFields(t *testing.T) {
	t.Parallel()

	job := domain.Job{
		Title:            "Backend Engineer",
		JobType:          "full-time",
		Qualifications:   "Go",
		Responsibilities: "APIs",
		Benefits:         "insurance",
		WorkSchedule:     "9-5",
		Location:         "Hanoi",
	}
	fields := domain.ExtractedFields{
		Objective:   "Build reliable services",
		Experiences: domain.FieldSentinel,
		Skills:      "Go, Postgres",
		Education:   "",
		Certificate: domain.FieldSentinel,
	}

	p := EvaluationPrompt(job, fields)

	assert.Contains(t, p, "- title: Backend Engineer")
	assert.Contains(t, p, "-objective: Build reliable services")
	assert.Contains(t, p, "-skills: Go, Postgres")
	// Sentinel and empty fields never reach the model.
	assert.NotContains(t, p, "-experiences")
	assert.NotContains(t, p, "-education")
	assert.NotContains(t, p, "-certificate")

	assert.Contains(t, p, `"score"`)
	assert.Contains(t, p, `"summary_reason"`)
}

func TestEvaluationPrompt_DemandsStrictScale(t *testing.T) {
	t.Parallel()

	p := EvaluationPrompt(domain.Job{}, domain.ExtractedFields{})
	assert.Contains(t, p, "scale from 0 to 100")
	assert.Contains(t, p, "Do not be lenient")
}
