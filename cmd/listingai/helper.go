package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	llmErrors "github.com/harunnryd/listingai/internal/errors"
	"github.com/harunnryd/listingai/internal/model"
	"github.com/harunnryd/listingai/internal/model/contract"

	"github.com/natefinch/atomic"
)

func newRouter() (*model.DefaultModelRouter, error) {
	if cfg == nil {
		return nil, llmErrors.Internal("config is not loaded")
	}
	return model.NewModelRouter(cfg.Models)
}

// loadConversation assembles the message list: the conversation file first,
// an optional system prompt in front, and prompt arguments as a trailing user turn.
func loadConversation(path, system string, prompt []string, stdin io.Reader) ([]contract.Message, error) {
	var messages []contract.Message

	if path != "" {
		data, err := readInput(path, stdin)
		if err != nil {
			return nil, err
		}
		messages, err = contract.ParseConversation(data)
		if err != nil {
			return nil, llmErrors.InvalidInput(err.Error())
		}
	}

	if system != "" {
		messages = append([]contract.Message{contract.System(system)}, messages...)
	}
	if text := strings.TrimSpace(strings.Join(prompt, " ")); text != "" {
		messages = append(messages, contract.User(text))
	}

	if len(messages) == 0 {
		return nil, llmErrors.InvalidInput("no messages: pass a prompt or --messages")
	}
	return messages, nil
}

func loadSchema(path string, stdin io.Reader) (contract.Schema, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	schema, err := contract.ParseSchema(data)
	if err != nil {
		return nil, llmErrors.InvalidInput(err.Error())
	}
	return schema, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput prints to stdout, or replaces path atomically when set.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
