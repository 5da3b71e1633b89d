package scheduler

import (
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/gridsweep/gridsweep/internal/profile"
)

// scriptTemplate is the shared batch script for a sweep. Every run submits
// the same script; the run's parameter record arrives as "$1". Per-run log
// paths are passed on the sbatch command line, not baked into the script.
var scriptTemplate = template.Must(template.New("job.sh").Parse(`#!/bin/bash
#SBATCH --job-name={{.JobName}}
{{if .Time -}}
#SBATCH --time={{.Time}}
{{end -}}
{{if ne .Nodes 0 -}}
#SBATCH --nodes={{.Nodes}}
{{end -}}
{{if ne .NTasks 0 -}}
#SBATCH --ntasks={{.NTasks}}
{{end -}}
{{if ne .CPUsPerTask 0 -}}
#SBATCH --cpus-per-task={{.CPUsPerTask}}
{{end -}}
{{if .Mem -}}
#SBATCH --mem={{.Mem}}
{{end -}}
{{if .Partition -}}
#SBATCH --partition={{.Partition}}
{{end -}}
{{if .Account -}}
#SBATCH --account={{.Account}}
{{end -}}
{{if .QOS -}}
#SBATCH --qos={{.QOS}}
{{end -}}
{{if .MailUser -}}
#SBATCH --mail-user={{.MailUser}}
{{end -}}
{{if .MailType -}}
#SBATCH --mail-type={{.MailType}}
{{end -}}
{{if .EnvSetup}}
{{.EnvSetup}}
{{- end}}

{{.Command}} "$1"
`))

// RenderScript produces the batch script for the given job profile.
func RenderScript(p *profile.Profile) (string, error) {
	var sb strings.Builder
	if err := scriptTemplate.Execute(&sb, p); err != nil {
		return "", errors.Wrap(err, "rendering batch script")
	}
	return sb.String(), nil
}
