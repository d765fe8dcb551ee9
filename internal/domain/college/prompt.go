package college

import (
	"fmt"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

const systemPrompt = `You are College Navigator, a specialized counselor for Indian education.
For each college recommendation, provide comprehensive details about:

1. Academic Excellence:
- NAAC/NBA accreditation status and rating
- Faculty qualifications and research output
- Academic infrastructure and facilities

2. Financial Considerations:
- Detailed fee structure within specified budget
- Available scholarships and financial aid
- Payment plans and education loan tie-ups

3. Campus & Opportunities:
- Location accessibility and surrounding amenities
- Placement statistics with company details
- Industry partnerships and internship programs
- Research facilities and opportunities

Return response in JSON format:
{
  "colleges": [{
    "name": "Full college name with establishment year",
    "location": "Complete address with nearby landmarks",
    "requirements": "Detailed admission criteria including academics, entrance exams, and selection process",
    "programs": ["Program name with specialization tracks"],
    "courses": ["Detailed course names with duration"],
    "rating": "NAAC/NBA rating (1-5)",
    "website": "Official website URL",
    "offerings": [
      "Detailed campus facilities",
      "Latest placement statistics",
      "Available scholarships",
      "Industry collaborations"
    ]
  }],
  "suggestions": "Personalized guidance based on user criteria"
}`

const userTemplate = `Find colleges for %[1]s in %[2]s with budget %[3]s.
Focus on:
1. Programs matching %[1]s with specialization options
2. Total costs within %[3]s including tuition and other fees
3. Available financial aid and scholarship opportunities
4. Placement records specific to %[1]s programs
5. Industry connections and internship programs
6. Research facilities and faculty expertise`

const basicTemplate = `Find colleges for a student interested in %s in %s with a budget of %s.
Provide 3 realistic college suggestions with their requirements and offerings. Return the response in the following JSON format:
{
  "colleges": [
    {
      "name": "College Name",
      "location": "Location",
      "requirements": "Admission requirements",
      "offerings": ["offering1", "offering2", "offering3"]
    }
  ]
}`

const urlSystemPrompt = "You are a helpful assistant that provides accurate college website URLs. Only return the URL, nothing else."

const urlTemplate = "Please provide the official website URL for %s located in %s, India. " +
	"Return only the URL without any additional text or explanation."

// BuildPrompt renders the detailed college search prompt.
func BuildPrompt(c Criteria) domain.PromptSpec {
	return domain.PromptSpec{
		System:      systemPrompt,
		User:        fmt.Sprintf(userTemplate, c.Stream, c.Location, c.Budget),
		Format:      domain.FormatJSON,
		Temperature: 0.7,
		MaxTokens:   1500,
		Model:       domain.ModelStandard,
	}
}

// BuildBasicPrompt renders the lightweight college search prompt (no system role).
func BuildBasicPrompt(c Criteria) domain.PromptSpec {
	return domain.PromptSpec{
		User:        fmt.Sprintf(basicTemplate, c.Stream, c.Location, c.Budget),
		Format:      domain.FormatJSON,
		Temperature: 0.7,
		Model:       domain.ModelLight,
	}
}

// BuildURLPrompt renders the website lookup prompt. The reply is plain text.
func BuildURLPrompt(c URLCriteria) domain.PromptSpec {
	return domain.PromptSpec{
		System:      urlSystemPrompt,
		User:        fmt.Sprintf(urlTemplate, c.CollegeName, c.Location),
		Format:      domain.FormatText,
		Temperature: 0.3,
		Model:       domain.ModelLight,
	}
}
