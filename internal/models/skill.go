package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProficiencyLevel grades a user's command of a skill.
type ProficiencyLevel string

const (
	ProficiencyBasic        ProficiencyLevel = "básico"
	ProficiencyIntermediate ProficiencyLevel = "intermediário"
	ProficiencyAdvanced     ProficiencyLevel = "avançado"
)

// Valid reports whether p is a known level.
func (p ProficiencyLevel) Valid() bool {
	switch p {
	case ProficiencyBasic, ProficiencyIntermediate, ProficiencyAdvanced:
		return true
	}
	return false
}

// Skill is an entry in the shared skill taxonomy.
type Skill struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserSkill links a user to a skill with a proficiency level.
type UserSkill struct {
	SkillID uuid.UUID        `json:"skillId"`
	Name    string           `json:"name"`
	Level   ProficiencyLevel `json:"proficiencyLevel"`
}

// SkillInput is a skill as sent by clients: either a bare name ("cozinha")
// or an object {"name": "cozinha", "proficiencyLevel": "avançado"}.
type SkillInput struct {
	Name  string           `json:"name"`
	Level ProficiencyLevel `json:"proficiencyLevel,omitempty"`
}

// UnmarshalJSON accepts both the string and the object form.
func (s *SkillInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = SkillInput{Name: name}
		return nil
	}
	type plain SkillInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = SkillInput(p)
	return nil
}

// NormalizeSkills trims names, drops blanks and duplicates (first wins),
// defaults the level and rejects unknown levels. Order is preserved.
func NormalizeSkills(in []SkillInput) ([]SkillInput, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]SkillInput, 0, len(in))
	for _, s := range in {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		level := s.Level
		if level == "" {
			level = ProficiencyBasic
		}
		if !level.Valid() {
			return nil, fmt.Errorf("invalid proficiency level %q for skill %q", s.Level, name)
		}
		out = append(out, SkillInput{Name: name, Level: level})
	}
	return out, nil
}

// SkillList is a list of skills that also accepts a comma-separated string
// ("cozinha, logística").
type SkillList []SkillInput

// UnmarshalJSON accepts an array of SkillInput or a comma-separated string.
func (l *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := SkillList{}
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, SkillInput{Name: name})
			}
		}
		*l = out
		return nil
	}
	var items []SkillInput
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
