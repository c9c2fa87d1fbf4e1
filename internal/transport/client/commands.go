package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"valentinelink/internal/domain"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Create stores a configuration and displays the resulting short link.
// The configuration is read from the given JSON file, or the stock
// configuration for lang is used when path is empty.
func (c *Commands) Create(ctx context.Context, path, lang string) error {
	config, err := loadConfig(path, lang)
	if err != nil {
		return err
	}

	result, err := c.client.CreateLink(ctx, config)
	if err != nil {
		return err
	}

	fmt.Printf("Valentine link created:\n")
	fmt.Printf("ID: %s\n", result.ID)
	fmt.Printf("Path: /valentine?id=%s\n", result.ID)

	return nil
}

// Get retrieves and displays a stored configuration
func (c *Commands) Get(ctx context.Context, id string) error {
	config, err := c.client.GetConfig(ctx, id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Link '%s' not found\n", id)
			return nil
		}
		return err
	}

	fmt.Printf("Valentine configuration:\n")
	fmt.Printf("Recipient: %s\n", config.Recipient.Name)
	fmt.Printf("Sender: %s\n", config.Sender.Name)
	fmt.Printf("Language: %s\n", config.Lang)
	fmt.Printf("Reward: %s%d (%s)\n", config.Game.Reward.Currency, config.Game.Reward.Amount, config.Game.Reward.Code)
	fmt.Printf("Letter:\n")
	for _, paragraph := range config.Letter.Content {
		fmt.Printf("  %s\n", paragraph)
	}

	return nil
}

func loadConfig(path, lang string) (*domain.ValentineConfig, error) {
	if path == "" {
		return domain.DefaultConfigForLang(lang), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config domain.ValentineConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}
