package course

import (
	"fmt"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

const systemPrompt = "You are an educational technology expert with deep knowledge of online learning platforms and courses."

const userTemplate = `Provide detailed information about online courses matching "%s" in the following JSON format:
{
  "courses": [{
    "title": "Course Title",
    "provider": "Platform name (e.g., Coursera, edX, Udacity)",
    "duration": "Course duration (e.g., 8 weeks)",
    "rating": number between 1-5 with one decimal place,
    "level": "Difficulty level (Beginner/Intermediate/Advanced)",
    "category": "Main category (Technical/Analytical/Creative/Communication)",
    "courseUrl": "Direct URL to the course (must be a valid URL)"
  }]
}
Important notes:
- Provide up to 3 most relevant courses
- Only include reputable course providers
- Ensure course information is current and accurate
- Include a mix of difficulty levels if applicable
- Focus on practical, career-oriented courses
- Always include valid, direct URLs to the courses`

// BuildPrompt renders the course search prompt. The query is interpolated verbatim.
func BuildPrompt(c Criteria) domain.PromptSpec {
	return domain.PromptSpec{
		System:      systemPrompt,
		User:        fmt.Sprintf(userTemplate, c.Query),
		Format:      domain.FormatJSON,
		Temperature: 0.7,
		Model:       domain.ModelStandard,
	}
}
