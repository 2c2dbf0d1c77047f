// Command seed-widget-config uploads widget configs from a JSON file.
//
// Usage:
//
//	API_URL=http://localhost:4000 WIDGET_CONFIG_API_KEY=... go run ./scripts/seed-widget-config configs.json
//
// The file holds {"configs": [{"projectId": "5796", ...update fields}]}.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fahimkhan-git/seher-ai-chat/internal/widgetconfig"
)

type seedEntry struct {
	ProjectID string `json:"projectId"`
	widgetconfig.Update
}

type seedFile struct {
	Configs []seedEntry `json:"configs"`
}

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/seed-widget-config <configs.json>")
		os.Exit(1)
	}

	apiURL := strings.TrimRight(os.Getenv("API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://localhost:4000"
	}
	apiKey := strings.TrimSpace(os.Getenv("WIDGET_CONFIG_API_KEY"))

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("error reading file: %v\n", err)
		os.Exit(1)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		fmt.Printf("error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	failed := 0
	for _, entry := range seed.Configs {
		if err := entry.Update.Validate(); err != nil {
			fmt.Printf("skip %s: %v\n", entry.ProjectID, err)
			failed++
			continue
		}
		if err := upload(context.Background(), client, apiURL, apiKey, entry); err != nil {
			fmt.Printf("failed %s: %v\n", entry.ProjectID, err)
			failed++
			continue
		}
		fmt.Printf("seeded %s\n", entry.ProjectID)
	}
	fmt.Printf("%d of %d configs seeded\n", len(seed.Configs)-failed, len(seed.Configs))
	if failed > 0 {
		os.Exit(1)
	}
}

func upload(ctx context.Context, client *http.Client, apiURL, apiKey string, entry seedEntry) error {
	if strings.TrimSpace(entry.ProjectID) == "" {
		return fmt.Errorf("projectId is required")
	}
	body, err := json.Marshal(entry.Update)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/api/widget-config/%s", apiURL, url.PathEscape(entry.ProjectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
