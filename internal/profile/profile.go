// Package profile loads the static job profile: the scheduler resource
// request and environment preamble shared by every run of a sweep. All
// scheduler knobs pass through to the batch script unchanged; nothing here
// is interpreted.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile mirrors the #SBATCH header of a batch script plus the environment
// setup and the downstream command. Empty fields are omitted from the
// rendered script.
type Profile struct {
	JobName     string `yaml:"job_name"`
	Time        string `yaml:"time"`
	Nodes       int    `yaml:"nodes"`
	NTasks      int    `yaml:"ntasks"`
	CPUsPerTask int    `yaml:"cpus_per_task"`
	Mem         string `yaml:"mem"`
	Partition   string `yaml:"partition"`
	Account     string `yaml:"account"`
	QOS         string `yaml:"qos"`
	MailUser    string `yaml:"mail_user"`
	MailType    string `yaml:"mail_type"`

	// EnvSetup is a shell fragment run before the command, typically module
	// loads and environment activation.
	EnvSetup string `yaml:"env_setup"`

	// Command is the downstream training command. It receives the run's
	// parameter record as its sole positional argument.
	Command string `yaml:"command"`
}

// Load reads and validates a job profile from a YAML file.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job profile %s: %w", path, err)
	}

	p := &Profile{}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parsing job profile %s: %w", path, err)
	}

	if p.Command == "" {
		return nil, fmt.Errorf("job profile %s: command is required", path)
	}
	if p.JobName == "" {
		p.JobName = "gridsweep"
	}
	return p, nil
}
