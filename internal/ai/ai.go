package ai

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIService holds the Gemini client and the read-only database connection.
// The read-only DSN keeps the model physically unable to mutate anything,
// whatever SQL it produces.
type AIService struct {
	Client *genai.Client
	DB     *sql.DB
}

// NewAIService initializes the Gemini client.
func NewAIService(apiKey string, dbReadOnly *sql.DB) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{Client: client, DB: dbReadOnly}, nil
}

// DraftListingDescription asks the model for listing copy based on the
// property's facts. No tools involved; a single prompt/response round trip.
func (s *AIService) DraftListingDescription(ctx context.Context, title, propertyType, suburb, city string, price float64, bedrooms, bathrooms int) (string, error) {
	model := s.Client.GenerativeModel("gemini-1.5-flash")

	prompt := fmt.Sprintf(`
		Write a short, warm listing description (max 120 words) for a private
		off-market property listing. Do not invent facts beyond these:
		Title: %s
		Type: %s
		Location: %s, %s
		Price guide: %.0f
		Bedrooms: %d, Bathrooms: %d
		Plain text only, no headings.`,
		title, propertyType, suburb, city, price, bedrooms, bathrooms)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("error generating description: %w", err)
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return fmt.Sprintf("%v", res.Candidates[0].Content.Parts[0]), nil
}

// GenerateInsights runs the admin insights chat. The model can call the
// run_readonly_sql tool to answer questions from live marketplace data.
func (s *AIService) GenerateInsights(ctx context.Context, userMessage string) (string, error) {
	model := s.Client.GenerativeModel("gemini-1.5-flash")

	// 1. Define Tools
	sqlTool := &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "run_readonly_sql",
				Description: "Executes a READ-ONLY SQL query (SELECT only) to answer questions.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "The MySQL SELECT query to execute.",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
	model.Tools = []*genai.Tool{sqlTool}

	// 2. System Instructions
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`
			You are the HushHome admin assistant.
			Access: MySQL database (run_readonly_sql).
			Schema: %s
			Rules: SELECT only. Be concise. Never reveal password hashes or
			verification codes.`, s.getSchemaDefinition()))},
	}

	// 3. Execute Chat
	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(userMessage))
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}

	// 4. Loop for Function Calls
	for {
		if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
			return "No response.", nil
		}
		part := res.Candidates[0].Content.Parts[0]

		funcCall, ok := part.(genai.FunctionCall)
		if !ok {
			return fmt.Sprintf("%v", part), nil
		}

		if funcCall.Name != "run_readonly_sql" {
			return "", fmt.Errorf("unknown function: %s", funcCall.Name)
		}

		query, ok := funcCall.Args["query"].(string)
		if !ok {
			return "", fmt.Errorf("invalid query argument")
		}
		log.Printf("AI running SQL: %s", query)

		sqlResult, sqlErr := s.runReadOnlyQuery(query)
		if sqlErr != nil {
			sqlResult = fmt.Sprintf("SQL Error: %v", sqlErr)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     "run_readonly_sql",
			Response: map[string]interface{}{"result": sqlResult},
		})
		if err != nil {
			return "", fmt.Errorf("tool response error: %w", err)
		}
	}
}

// runReadOnlyQuery executes a SELECT against the read-only connection and
// returns the rows as JSON for the model.
func (s *AIService) runReadOnlyQuery(query string) (string, error) {
	normalized := strings.ToUpper(query)
	for _, keyword := range []string{"UPDATE", "DELETE", "DROP", "INSERT", "ALTER", "TRUNCATE"} {
		if strings.Contains(normalized, keyword) {
			return "", fmt.Errorf("security violation: modify operations are not allowed")
		}
	}

	rows, err := s.DB.Query(query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	count := len(columns)
	tableData := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, count)
		valuePtrs := make([]interface{}, count)
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		rows.Scan(valuePtrs...)
		entry := make(map[string]interface{})
		for i, col := range columns {
			var v interface{}
			val := values[i]
			b, ok := val.([]byte)
			if ok {
				v = string(b)
			} else {
				v = val
			}
			entry[col] = v
		}
		tableData = append(tableData, entry)
	}
	jsonData, err := json.Marshal(tableData)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// getSchemaDefinition describes the tables the assistant may query.
func (s *AIService) getSchemaDefinition() string {
	return `
	- users (id, role [USER, ADMIN], status [unverified, active, suspended], email, full_name, phone_number, created_at)
	- properties (id, owner_id, title, slug, property_type, suburb, city, price, bedrooms, bathrooms, status [ACTIVE, PAUSED, SOLD], created_at)
	- demands (id, buyer_id, property_type, suburb, city, min_price, max_price, min_bedrooms, status [ACTIVE, PAUSED], created_at)
	- matches (id, property_id, demand_id, created_at)
	- notifications (id, user_id, message, link, is_read, created_at)
	- leads (id, reference, full_name, email, phone, suburb, property_type, message, created_at)
	`
}
