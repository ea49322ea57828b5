package services

import "github.com/Drizo7/open-ai-chatbot/models"

// GetSystemPrompt defines the core instructions sent with every chat
// completion request.
func GetSystemPrompt() string {
	return "You are a helpful assistant."
}

// GetNoteFunctions declares the note-creation function available to the
// model. The schema matches the payload the relay validates after
// reassembly: a title and a body, both required.
func GetNoteFunctions() []models.FunctionDefinition {
	return []models.FunctionDefinition{
		{
			Name:        "createAndPushNote",
			Description: "Creates a note and pushes it to Google Sheets",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": map[string]interface{}{
						"type":        "string",
						"description": "The note title",
					},
					"body": map[string]interface{}{
						"type":        "string",
						"description": "The note body",
					},
				},
				"required": []string{"title", "body"},
			},
		},
	}
}
