package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

type OllamaClient struct {
	ollamaURL string
	model     string
	client    *http.Client
}

func NewOllamaClient(url, model string) *OllamaClient {
	if model == "" {
		model = "mistral"
	}
	return &OllamaClient{
		ollamaURL: url,
		model:     model,
		client: &http.Client{
			Timeout: 600 * time.Second, // Set a timeout to avoid hanging requests
		},
	}
}

func (o *OllamaClient) callOllama(prompt string) (string, error) {
	requestBody, _ := json.Marshal(map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
	})

	req, err := http.NewRequest("POST", o.ollamaURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	fullBody := string(bodyBytes)

	// If the response is streamed as multiple JSON objects (separated by
	// newlines), aggregate them using our standalone function.
	if strings.Contains(fullBody, "\n") {
		return AggregateStreamedResponse(fullBody), nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return "", err
	}
	if responseText, ok := result["response"].(string); ok {
		return responseText, nil
	}

	return "", errors.New("invalid response from Ollama")
}

type LLMResponseChunk struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// AggregateStreamedResponse takes the full raw response body (a string with multiple JSON objects separated by newlines)
// and concatenates the "response" fields into one final string.
func AggregateStreamedResponse(body string) string {
	lines := strings.Split(body, "\n")
	var builder strings.Builder
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			var chunk LLMResponseChunk
			if err := json.Unmarshal([]byte(trimmed), &chunk); err != nil {
				log.Println("Error unmarshaling chunk:", err)
				continue
			}
			builder.WriteString(chunk.Response)
		}
	}
	return builder.String()
}

// GeneratedQuestion is the JSON shape the model is asked to produce for a
// single quiz question.
type GeneratedQuestion struct {
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuestion asks the model for one question about a concept, using
// the given paper context, and parses the JSON reply.
func (o *OllamaClient) GenerateQuestion(conceptName, definition, context, difficulty string) (*GeneratedQuestion, error) {
	prompt := fmt.Sprintf(
		`Generate one %s multiple-choice question testing understanding of the concept "%s".
Concept definition: %s
Paper context:
%s
Output minimal JSON with keys 'type', 'question', 'options' (array of 4 strings), 'correct_answer' (one of the options), 'explanation'.`,
		difficulty, conceptName, definition, context)

	response, err := o.callOllama(prompt)
	if err != nil {
		return nil, err
	}

	var q GeneratedQuestion
	if err := json.Unmarshal([]byte(extractJSON(response)), &q); err != nil {
		return nil, fmt.Errorf("failed to parse question response: %w", err)
	}
	if q.Question == "" || q.CorrectAnswer == "" {
		return nil, errors.New("model returned an incomplete question")
	}
	return &q, nil
}

// ExtractedConcept is the JSON shape for one concept returned by the
// extraction prompt.
type ExtractedConcept struct {
	Name          string   `json:"name"`
	Definition    string   `json:"definition"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Importance    float64  `json:"importance"`
	Prerequisites []string `json:"prerequisites"`
}

// ExtractConcepts asks the model for the key concepts of a paper.
func (o *OllamaClient) ExtractConcepts(title, text string) ([]ExtractedConcept, error) {
	prompt := fmt.Sprintf(
		`Extract the key concepts a student must understand from the research paper "%s".
Return minimal JSON: {"concepts": [{"name", "definition", "explanation", "difficulty" (beginner|intermediate|advanced), "importance" (0-1), "prerequisites" (array of concept names)}]}.
Paper text:
%s`, title, truncate(text, 8000))

	response, err := o.callOllama(prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Concepts []ExtractedConcept `json:"concepts"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse concept extraction response: %w", err)
	}
	return parsed.Concepts, nil
}

// SocraticReply generates a tutoring response that guides rather than
// answers outright.
func (o *OllamaClient) SocraticReply(question, context string, conceptNames []string) (string, error) {
	prompt := fmt.Sprintf(
		`You are a Socratic tutor for a research paper. Guide the student toward understanding with probing questions instead of giving the answer away.
Relevant concepts: %s
Paper excerpts:
%s
Student: %s`,
		strings.Join(conceptNames, ", "), context, question)

	return o.callOllama(prompt)
}

// SummarizeSection condenses one paper section into a few sentences.
func (o *OllamaClient) SummarizeSection(title, content string) (string, error) {
	prompt := fmt.Sprintf(
		`Summarize the following section from a research paper in 2-3 clear sentences. Focus on the main points and key takeaways.
Section: %s
Content:
%s
Summary:`, title, truncate(content, 5000))

	response, err := o.callOllama(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// SummarizePaper produces the overall summary from the paper's opening
// sections.
func (o *OllamaClient) SummarizePaper(title, overview string) (string, error) {
	prompt := fmt.Sprintf(
		`Title: %s

Summarize this research paper in 3-4 sentences. Include:
1. What problem it addresses
2. The approach/methodology
3. Key findings or contributions

Paper content:
%s

Summary:`, title, overview)

	response, err := o.callOllama(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// ExtractKeyFindings pulls up to a handful of one-sentence findings from
// the paper's results-oriented sections.
func (o *OllamaClient) ExtractKeyFindings(text string) ([]string, error) {
	prompt := fmt.Sprintf(
		`Extract up to 5 key findings or contributions from this research paper.
Paper content:
%s
Return ONLY a JSON array like: ["Finding 1", "Finding 2", ...]`, truncate(text, 4000))

	response, err := o.callOllama(prompt)
	if err != nil {
		return nil, err
	}

	var findings []string
	if err := json.Unmarshal([]byte(extractJSON(response)), &findings); err != nil {
		return nil, fmt.Errorf("failed to parse key findings response: %w", err)
	}
	if len(findings) > 5 {
		findings = findings[:5]
	}
	return findings, nil
}

// AssessDifficulty classifies a paper excerpt as beginner, intermediate or
// advanced. Anything else the model says falls back to intermediate.
func (o *OllamaClient) AssessDifficulty(sample string) (string, error) {
	prompt := fmt.Sprintf(
		`Assess the difficulty level of this research paper. Consider technical jargon, mathematical complexity and assumed background knowledge.
Respond with ONLY ONE WORD: "beginner", "intermediate", or "advanced"
Paper excerpt:
%s
Difficulty level:`, truncate(sample, 2000))

	response, err := o.callOllama(prompt)
	if err != nil {
		return "", err
	}
	level := strings.ToLower(strings.TrimSpace(response))
	switch level {
	case "beginner", "intermediate", "advanced":
		return level, nil
	}
	return "intermediate", nil
}

// extractJSON trims any prose the model wraps around a JSON object.
func extractJSON(response string) string {
	start := strings.IndexAny(response, "{[")
	if start < 0 {
		return response
	}
	var end int
	if response[start] == '{' {
		end = strings.LastIndex(response, "}")
	} else {
		end = strings.LastIndex(response, "]")
	}
	if end <= start {
		return response
	}
	return response[start : end+1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
