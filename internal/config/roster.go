package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// CertificationRecord is a dated qualification in a roster file
type CertificationRecord struct {
	Name   string `yaml:"name" validate:"required"`
	Expiry string `yaml:"expiry" validate:"required,datetime=2006-01-02"`
}

// GuardRecord is one guard in a roster file
type GuardRecord struct {
	ID                  string                `yaml:"id" validate:"required"`
	Name                string                `yaml:"name" validate:"required"`
	Email               string                `yaml:"email,omitempty" validate:"omitempty,email"`
	LicenseExpiry       string                `yaml:"licenseExpiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateOfBirth         string                `yaml:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Skills              []string              `yaml:"skills,omitempty"`
	CompletedTraining   []string              `yaml:"completedTraining,omitempty"`
	YearsExperience     float64               `yaml:"yearsExperience,omitempty" validate:"gte=0"`
	PreferredShiftTypes []string              `yaml:"preferredShiftTypes,omitempty" validate:"dive,oneof=day evening night"`
	Languages           []string              `yaml:"languages,omitempty"`
	HasVehicle          bool                  `yaml:"hasVehicle,omitempty"`
	Certifications      []CertificationRecord `yaml:"certifications,omitempty" validate:"dive"`
	// ReliabilityScore overrides the score derived from attendance
	ReliabilityScore *float64 `yaml:"reliabilityScore,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// Roster is the file format for importing guards
type Roster struct {
	Guards []GuardRecord `yaml:"guards" validate:"required,min=1,unique=ID,dive"`
}

// LoadRosterFromPath loads and validates a roster file
func LoadRosterFromPath(path string) ([]model.Guard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	if err := validate.Struct(&roster); err != nil {
		return nil, fmt.Errorf("roster validation failed: %w", err)
	}

	guards := make([]model.Guard, len(roster.Guards))
	for i, r := range roster.Guards {
		guards[i] = r.Guard()
	}
	return guards, nil
}

// Guard converts the record to the scheduling model
func (r GuardRecord) Guard() model.Guard {
	g := model.Guard{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		LicenseExpiry:     r.LicenseExpiry,
		DateOfBirth:       r.DateOfBirth,
		Skills:            r.Skills,
		CompletedTraining: r.CompletedTraining,
		YearsExperience:   r.YearsExperience,
		Languages:         r.Languages,
		HasVehicle:        r.HasVehicle,
		ReliabilityScore:  r.ReliabilityScore,
	}
	for _, t := range r.PreferredShiftTypes {
		g.PreferredShiftTypes = append(g.PreferredShiftTypes, model.ShiftType(t))
	}
	for _, c := range r.Certifications {
		g.Certifications = append(g.Certifications, model.Certification{Name: c.Name, Expiry: c.Expiry})
	}
	return g
}
