package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // company timezones must resolve in minimal containers

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/worktime"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Record statuses a company may choose to land on after an approved correction.
const (
	ApprovedStatusLeft     = "left"
	ApprovedStatusApproved = "approved"
)

// Policy is the attendance policy of one company.
type Policy struct {
	StandardWorkMinutes  int    `yaml:"standard_work_minutes" validate:"gt=0"`
	NightStartHour       int    `yaml:"night_start_hour" validate:"gte=0,lte=23"`
	NightEndHour         int    `yaml:"night_end_hour" validate:"gte=0,lte=23,nefield=NightStartHour"`
	BreakCeilingMinutes  int    `yaml:"break_ceiling_minutes" validate:"gt=0"`
	ApprovedRecordStatus string `yaml:"approved_record_status" validate:"oneof=left approved"`
	Timezone             string `yaml:"timezone" validate:"required"`

	location *time.Location
}

func DefaultPolicy() Policy {
	wt := worktime.DefaultPolicy()
	return Policy{
		StandardWorkMinutes:  wt.StandardWorkMinutes,
		NightStartHour:       wt.NightStartHour,
		NightEndHour:         wt.NightEndHour,
		BreakCeilingMinutes:  300,
		ApprovedRecordStatus: ApprovedStatusLeft,
		Timezone:             "Asia/Jakarta",
	}
}

// WorkTime returns the subset the time calculator needs.
func (p Policy) WorkTime() worktime.Policy {
	return worktime.Policy{
		StandardWorkMinutes: p.StandardWorkMinutes,
		NightStartHour:      p.NightStartHour,
		NightEndHour:        p.NightEndHour,
	}
}

// Location falls back to UTC when the timezone was never resolved.
func (p Policy) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	if loc, err := time.LoadLocation(p.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

func (p *Policy) resolve() error {
	if err := validator.New().Struct(p); err != nil {
		return err
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	p.location = loc
	return nil
}

// PolicySet is the default policy plus per-company overrides keyed by company ID.
type PolicySet struct {
	Default   Policy
	Companies map[string]Policy
}

func NewPolicySet(def Policy) (*PolicySet, error) {
	if err := def.resolve(); err != nil {
		return nil, fmt.Errorf("default policy: %w", err)
	}
	return &PolicySet{Default: def, Companies: map[string]Policy{}}, nil
}

// For returns the policy of companyID, or the default one.
func (s *PolicySet) For(companyID string) Policy {
	if p, ok := s.Companies[companyID]; ok {
		return p
	}
	return s.Default
}

type policyFile struct {
	Default   yaml.Node            `yaml:"default"`
	Companies map[string]yaml.Node `yaml:"companies"`
}

// LoadPolicySet reads a YAML policy file. An empty path yields the defaults.
func LoadPolicySet(path string) (*PolicySet, error) {
	if path == "" {
		return NewPolicySet(DefaultPolicy())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePolicySet(data)
}

// ParsePolicySet decodes a policy document. Company entries only need the
// keys they override; everything else comes from the default section.
//
//	default:
//	  standard_work_minutes: 480
//	companies:
//	  0199...:
//	    approved_record_status: approved
func ParsePolicySet(data []byte) (*PolicySet, error) {
	var raw policyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	def := DefaultPolicy()
	if !raw.Default.IsZero() {
		if err := raw.Default.Decode(&def); err != nil {
			return nil, fmt.Errorf("failed to decode default policy: %w", err)
		}
	}

	set, err := NewPolicySet(def)
	if err != nil {
		return nil, err
	}

	for companyID, node := range raw.Companies {
		p := set.Default
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode policy for company %s: %w", companyID, err)
		}
		if err := p.resolve(); err != nil {
			return nil, fmt.Errorf("company %s: %w", companyID, err)
		}
		set.Companies[companyID] = p
	}

	return set, nil
}
