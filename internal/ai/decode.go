package ai

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/chrismelba/noirplan/internal/errors"
)

// DecodeJSON decodes a backend payload into target, tolerating the code
// fences some models wrap JSON in. A payload that still fails to decode is
// reported as ErrMalformedResponse.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.Wrap(ErrMalformedResponse, "empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := stripCodeFence(trimmed)
	if sanitized != trimmed {
		if err := json.Unmarshal([]byte(sanitized), target); err == nil {
			return nil
		}
	}

	return errors.Wrap(ErrMalformedResponse, "decode payload",
		slog.String("unmarshal", directErr.Error()),
		slog.String("snippet", snippet(trimmed)))
}

func stripCodeFence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	body := strings.TrimPrefix(content, "```")
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func snippet(content string) string {
	const limit = 160
	clean := strings.Join(strings.Fields(content), " ")
	runes := []rune(clean)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
