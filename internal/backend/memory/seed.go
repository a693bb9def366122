package memory

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the fixture data a memory backend starts from.
type Seed struct {
	Employees []SeedEmployee `yaml:"employees"`
	Users     []SeedUser     `yaml:"users"`
	Tasks     []SeedTask     `yaml:"tasks"`
	Remarks   []SeedRemark   `yaml:"remarks"`
}

// SeedEmployee is an employee record in a seed file.
type SeedEmployee struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Designation string `yaml:"designation"`
	ManagerID   string `yaml:"mgr_id"`
	Department  string `yaml:"department"`
}

// SeedUser is a sign-in account in a seed file. Password is plaintext and is
// hashed when the backend starts; PasswordHash is a bcrypt hash used as is
// and wins over Password. With neither set the default password applies.
type SeedUser struct {
	EmployeeID      string `yaml:"e_id"`
	Role            string `yaml:"role"`
	Status          string `yaml:"status"`
	Password        string `yaml:"password"`
	PasswordHash    string `yaml:"password_hash"`
	PasswordChanged bool   `yaml:"password_changed"`
}

// SeedTask is a task in a seed file. Dates accept RFC 3339 or YYYY-MM-DD.
type SeedTask struct {
	ID              string `yaml:"id"`
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	Priority        string `yaml:"priority"`
	Status          string `yaml:"status"`
	CreatedBy       string `yaml:"created_by"`
	AssignedTo      string `yaml:"assigned_to"`
	Reviewer        string `yaml:"reviewer"`
	ExpectedClosure string `yaml:"expected_closure"`
}

// SeedRemark is a remark in a seed file.
type SeedRemark struct {
	TaskID  string `yaml:"task_id"`
	UserID  string `yaml:"user_id"`
	Content string `yaml:"content"`
}

// DefaultSeed returns the bundled demo data.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a seed file from path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &seed, nil
}
