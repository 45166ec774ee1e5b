// Package pipeline implements the two asynchronous stages of the
// recruitment flow: CV field extraction and candidate evaluation.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// Extraction field keys, also the JSON keys the model must return.
const (
	KeyObjective   = "extract_objective"
	KeyExperiences = "extract_experiences"
	KeySkills      = "extract_skills"
	KeyEducation   = "extract_education"
	KeyCertificate = "extract_certificate"

	KeyScore         = "score"
	KeySummaryReason = "summary_reason"
)

// System contents for the three prompt kinds.
const (
	SystemContentCorrection = "You are a helpful assistant specializing in spelling and grammar correction."
	SystemContentExtraction = "You are an assistant that extracts candidate information from their CV/resume."
	SystemContentEvaluation = "You are a strict HR assistant who evaluates job candidates on a scale from 0 to 100, based on the candidate's information and the job they are applying for."
)

// CorrectionPrompt asks the model to repair OCR noise without commentary.
func CorrectionPrompt(paragraph string) string {
	return fmt.Sprintf(`The following text is written in either English or Vietnamese and may contain
spelling or grammatical errors. Please restore and correct any mistakes, returning only the fully corrected text.
Do not provide any additional information:
`+"```"+`
%s
`+"```", paragraph)
}

// ExtractionPrompt asks for the five CV fields as a raw JSON object.
// A field with no relevant information must come back as 0.
func ExtractionPrompt(paragraph string) string {
	return fmt.Sprintf(`Given the following text, which is a CV/resume of a candidate (in either Vietnamese or English),
extract the information into a dictionary with the following five fields: %q,
%q, %q, %q, and %q.
Each extracted value should be formatted as a well-structured string for readability.
If a field has no relevant information, return 0.
Return only the extracted result without any additional explanation or commentary
and return the data as a raw JSON object without formatting it as a code block or using triple backticks.

Here is the text:
`+"```"+`
%s
`+"```", KeyObjective, KeyExperiences, KeySkills, KeyEducation, KeyCertificate, paragraph)
}

// candidateSection renders the candidate bullet list, skipping fields that
// are empty or carry the extraction sentinel.
func candidateSection(f domain.ExtractedFields) string {
	var b strings.Builder
	add := func(label, value string) {
		if value == "" || value == domain.FieldSentinel {
			return
		}
		fmt.Fprintf(&b, "-%s: %s\n", label, value)
	}
	add("objective", f.Objective)
	add("experiences", f.Experiences)
	add("skills", f.Skills)
	add("education", f.Education)
	add("certificate", f.Certificate)
	return b.String()
}

// EvaluationPrompt asks for a strict suitability assessment of one candidate
// against one job, returned as a raw JSON object with exactly two keys.
func EvaluationPrompt(job domain.Job, fields domain.ExtractedFields) string {
	return fmt.Sprintf(`You are an exceptionally strict and highly critical expert in the field of recruitment.
Given the following information about the "Job Position" and the "Candidate,"
evaluate the candidate's suitability for the role on a scale from 0 to 100.
Additionally, provide a detailed explanation for your decision. Keep in mind that
I expect an extremely rigorous and demanding assessment. Do not be lenient in your evaluation.

Job position:
- title: %s
- job_type: %s
- qualifications: %s
- responsibilities: %s
- benefits: %s
- work_schedule: %s
- location: %s

Candidate information:
%s
Return only the extracted result with 2 keys: %q and %q without any additional explanation or commentary
and return the data as a raw JSON object without formatting it as a code block or using triple backticks.`,
		job.Title, job.JobType, job.Qualifications, job.Responsibilities,
		job.Benefits, job.WorkSchedule, job.Location,
		candidateSection(fields), KeyScore, KeySummaryReason)
}
