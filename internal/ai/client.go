package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client реализует извлечение задач из текста через OpenAI-совместимый API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GeneratedTask — задача, извлечённая моделью из текста пользователя.
type GeneratedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Summary     string `json:"summary"`
}

const taskTimeLayout = "2006-01-02 15:04:05"

// GenerateTasks извлекает из свободного текста список задач с временем
// и текстом напоминания. Невалидный ввод даёт пустой список.
func (c *Client) GenerateTasks(ctx context.Context, input string) ([]GeneratedTask, error) {
	system := fmt.Sprintf(`I want you to analyze the tasks given to you as natural language and output the tasks in the model below
{
    "title": "Title of the task",
    "description": "extra description of the task",
    "time": "time mentioned in the prompt",
    "summary": "human friendly notification that describes the task when it is time to accomplish it."
} as a JSON array.
If the user does not provide time like 8 am or 9 pm, use your own time that suits the task based on the text,
for example 8 am for morning, 2 pm for afternoon and 9 pm for evening. Time must be in format "yyyy-MM-dd HH:mm:ss".
Use the current date if no date is provided. Current date is %s.
The summary is a human friendly reminder message built from the title and description, for example "It's almost time to play football".
Do not use the task title and description directly; generate your own message and keep the important details.
If the input is invalid or no tasks can be extracted from it, return an empty array. Return only JSON.`,
		time.Now().Format(taskTimeLayout))

	content, err := c.complete(ctx, system, input)
	if err != nil {
		return nil, err
	}

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(extractJSON(content)), &tasks); err != nil {
		return nil, fmt.Errorf("ai: некорректный ответ модели: %w", err)
	}

	return tasks, nil
}

// GenerateSummary генерирует текст напоминания для одной задачи.
func (c *Client) GenerateSummary(ctx context.Context, title, description string) (string, error) {
	system := `I want you to analyze the task given to you and output its summary in the model below
{
    "summary": "human friendly notification that describes the task when it is time to accomplish it."
}.
The summary is a human friendly reminder message built from the task title and description, for example "It's almost time to play football".
Do not use the title and description directly; generate your own message and keep the important details.
If the input is invalid, return { "summary": "" }. Return only JSON.`

	input, err := json.Marshal(map[string]string{
		"title":       title,
		"description": description,
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshal задачи: %w", err)
	}

	content, err := c.complete(ctx, system, string(input))
	if err != nil {
		return "", err
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &result); err != nil {
		return "", fmt.Errorf("ai: некорректный ответ модели: %w", err)
	}

	return result.Summary, nil
}

// complete выполняет запрос к chat completions API и возвращает текст ответа.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ai: baseURL не задан")
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: запрос завершился ошибкой: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: API вернул статус %d", resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("ai: не удалось разобрать ответ: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ модели")
	}

	return completion.Choices[0].Message.Content, nil
}

// extractJSON убирает markdown обрамление вокруг JSON, если модель его добавила.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	return content
}
