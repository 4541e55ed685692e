package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings a command mode depends on are present.
// Modes: "source", "serve", "alert", "escalate".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "source":
		problems = append(problems, c.sourceProblems()...)
	case "serve":
		problems = append(problems, c.sourceProblems()...)
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "alert":
		problems = append(problems, c.sourceProblems()...)
		if c.Monitoring.WebhookURL == "" {
			problems = append(problems, "monitoring.webhook_url is required")
		}
	case "escalate":
		problems = append(problems, c.sourceProblems()...)
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.FollowUpDB == "" {
			problems = append(problems, "notion.follow_up_db is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Dashboard.StatusPolicy {
	case "", "optimistic", "strict":
	default:
		problems = append(problems, "dashboard.status_policy must be optimistic or strict")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) sourceProblems() []string {
	var problems []string
	switch c.Source.Driver {
	case "rest":
		if c.Source.URL == "" {
			problems = append(problems, "source.url is required")
		}
		if c.Source.APIKey == "" {
			problems = append(problems, "source.api_key is required")
		}
	case "postgres", "sqlite":
		if c.Source.DatabaseURL == "" {
			problems = append(problems, "source.database_url is required")
		}
	default:
		problems = append(problems, "source.driver must be rest, postgres or sqlite")
	}
	return problems
}
