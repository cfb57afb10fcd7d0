// Package agent drives the external browser-automation worker that researches
// a company and returns a structured profile.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/octobees/sift-profiler/internal/entity"
)

// CompileTask renders the natural-language task handed to the automation
// worker. It is deterministic for a given company name.
func CompileTask(companyName string) string {
	name := strings.TrimSpace(companyName)
	signals := strings.Join(entity.SignalTypes, ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "Act as an expert sales intelligence analyst. Build a company profile for %q.\n\n", name)
	b.WriteString("You have a strict limit on the number of browser steps. Be efficient and never repeat a search you already made.\n\n")

	b.WriteString("Plan:\n")
	fmt.Fprintf(&b, "1. Overview: search for \"%s official website\" and \"%s official LinkedIn\". Record industry, headquarters location, employee count range (e.g. \"1000-5000\"), official website URL and founded year.\n", name, name)
	b.WriteString("2. Tech stack: open the official website's Careers or Jobs page and list 3-5 key technologies mentioned in engineering roles.\n")
	fmt.Fprintf(&b, "3. News signals: run a new search for \"%s news funding\" or \"%s news expansion\". Collect 2-3 recent articles with their title and direct URL, and tag each with one signal_type from: %s.\n", name, name, signals)
	b.WriteString("4. Key contacts: from LinkedIn, find 1-2 technology leaders (CTO, VP or Head of Engineering, DevOps lead). Record name and title, plus linkedin, email and phone only when publicly listed.\n\n")

	b.WriteString("Critical rules:\n")
	b.WriteString("- If a piece of information cannot be found after 3-4 attempts, stop looking for it, set it to null (or [] for lists) and move on to the next step.\n")
	b.WriteString("- Partial data is always better than no data. Never stall on a single field.\n")
	b.WriteString("- Every news signal must include its url. Every contact must include a name.\n")
	fmt.Fprintf(&b, "- company_name must be %q.\n", name)
	b.WriteString("- Return only the final JSON object matching the provided schema, with no commentary.\n")

	return b.String()
}

// outputSchema describes entity.CompanyProfile for the worker.
var outputSchema = json.RawMessage(`{
  "type": "object",
  "required": ["company_name"],
  "properties": {
    "company_name": {"type": "string"},
    "overview": {
      "type": ["object", "null"],
      "properties": {
        "industry": {"type": ["string", "null"]},
        "location": {"type": ["string", "null"]},
        "employee_count": {"type": ["string", "null"]},
        "website": {"type": ["string", "null"]},
        "founded_year": {"type": ["string", "null"]}
      }
    },
    "tech_stack": {"type": "array", "items": {"type": "string"}},
    "recent_news_signals": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["url"],
        "properties": {
          "title": {"type": ["string", "null"]},
          "url": {"type": "string"},
          "signal_type": {"type": ["string", "null"]}
        }
      }
    },
    "key_contacts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "title": {"type": ["string", "null"]},
          "linkedin": {"type": ["string", "null"]},
          "email": {"type": ["string", "null"]},
          "phone": {"type": ["string", "null"]}
        }
      }
    }
  }
}`)

// OutputSchema returns the JSON Schema the worker must satisfy.
func OutputSchema() json.RawMessage {
	out := make(json.RawMessage, len(outputSchema))
	copy(out, outputSchema)
	return out
}
