package output

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lmk/internal/model"
)

// YAMLFormatter formats notifications as a YAML sequence.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// yamlNotification fixes the key names and order of the YAML document.
type yamlNotification struct {
	ID        uint32 `yaml:"id"`
	Ref       string `yaml:"ref"`
	Title     string `yaml:"title"`
	Body      string `yaml:"body,omitempty"`
	Icon      string `yaml:"icon,omitempty"`
	Urgency   string `yaml:"urgency"`
	Created   string `yaml:"created_at"`
	Dismissed bool   `yaml:"dismissed"`
}

// Format writes notifications as YAML.
func (f *YAMLFormatter) Format(w io.Writer, notifications []model.Notification) error {
	docs := make([]yamlNotification, 0, len(notifications))
	for _, n := range notifications {
		docs = append(docs, yamlNotification{
			ID:        n.ID,
			Ref:       n.Ref,
			Title:     n.Title,
			Body:      n.Body,
			Icon:      n.Icon,
			Urgency:   n.Urgency,
			Created:   n.CreatedAt.Format(time.RFC3339),
			Dismissed: n.Dismissed,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(docs); err != nil {
		return err
	}
	return encoder.Close()
}
