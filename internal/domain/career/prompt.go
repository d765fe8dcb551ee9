package career

import (
	"fmt"

	"github.com/kailas-cloud/pathwise/internal/domain"
)

const systemPrompt = "You are a career counseling expert with deep knowledge of the Indian job market " +
	"and salary trends. You can understand and process natural language queries about careers."

const userTemplate = `Provide detailed information about careers matching "%s" in the following JSON format, with salaries specifically for the Indian job market. This query may come from voice input, so handle natural language queries appropriately:
{
  "careers": [{
    "title": "Career Title",
    "description": "Brief description of the role",
    "matchScore": number between 0-100,
    "salary": "Salary range in INR formatted like '₹X,XX,XXX - ₹Y,XX,XXX per annum'",
    "growth": "Growth projection with context",
    "requirements": ["requirement1", "requirement2", ...],
    "skills": ["skill1", "skill2", ...],
    "category": "Main category"
  }]
}
Important notes:
- Handle natural language variations in the query
- Provide up to 3 most relevant careers
- Ensure salary ranges are current for the Indian job market
- Format salary in Indian notation (e.g., ₹8,00,000 - ₹25,00,000 per annum)
- Include entry-level to experienced professional ranges
- Ensure information is accurate and up-to-date for India`

// BuildPrompt renders the career search prompt. The query is interpolated verbatim.
func BuildPrompt(c Criteria) domain.PromptSpec {
	return domain.PromptSpec{
		System:      systemPrompt,
		User:        fmt.Sprintf(userTemplate, c.Query),
		Format:      domain.FormatJSON,
		Temperature: 0.7,
		Model:       domain.ModelStandard,
	}
}
