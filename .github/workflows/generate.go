package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type BranchTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

type Trigger struct {
	Push        BranchTrigger `yaml:"push,omitempty"`
	PullRequest BranchTrigger `yaml:"pull_request,omitempty"`
}

type Args map[string]interface{}

type Step struct {
	Name string `yaml:"name,omitempty"`
	If   string `yaml:"if,omitempty"`
	Uses string `yaml:"uses,omitempty"`
	ID   string `yaml:"id,omitempty"`
	Run  string `yaml:"run,omitempty"`
	With Args   `yaml:"with,omitempty"`
}

type Job struct {
	RunsOn string   `yaml:"runs-on"`
	Needs  []string `yaml:"needs,omitempty"`
	Steps  []Step   `yaml:"steps"`
}

type Workflow struct {
	Name string         `yaml:"name"`
	On   Trigger        `yaml:"on,omitempty"`
	Jobs map[string]Job `yaml:"jobs"`
}

const goVersion = "1.21"

func setup() []Step {
	return []Step{{
		Name: "Checkout",
		Uses: "actions/checkout@v4",
	}, {
		Name: "Set up Go",
		Uses: "actions/setup-go@v5",
		With: Args{"go-version": goVersion},
	}}
}

func JobTest() Job {
	return Job{
		RunsOn: "ubuntu-latest",
		Steps: append(setup(), Step{
			Name: "Vet",
			Run:  "go vet ./...",
		}, Step{
			Name: "Test",
			Run:  "go test -race ./...",
		}),
	}
}

// JobBuild cross-compiles the CLI for each platform and uploads the binaries
// as workflow artifacts.
func JobBuild(platforms ...[2]string) Job {
	steps := setup()
	for _, platform := range platforms {
		goos, goarch := platform[0], platform[1]
		steps = append(steps, Step{
			Name: fmt.Sprintf("Build %s/%s", goos, goarch),
			Run: fmt.Sprintf(
				"GOOS=%s GOARCH=%s go build -o dist/osfs-%s-%s ./cmd/osfs",
				goos,
				goarch,
				goos,
				goarch,
			),
		})
	}
	steps = append(steps, Step{
		Name: "Upload",
		If:   "startsWith(github.ref, 'refs/tags/')",
		Uses: "actions/upload-artifact@v4",
		With: Args{"name": "osfs", "path": "dist/"},
	})
	return Job{RunsOn: "ubuntu-latest", Needs: []string{"test"}, Steps: steps}
}

func WorkflowCI() Workflow {
	return Workflow{
		Name: "ci",
		On: Trigger{
			Push: BranchTrigger{
				Branches: []string{"master"},
				Tags:     []string{"v*"},
			},
			PullRequest: BranchTrigger{Branches: []string{"master"}},
		},
		Jobs: map[string]Job{
			"test": JobTest(),
			"build": JobBuild(
				[2]string{"linux", "amd64"},
				[2]string{"linux", "arm64"},
				[2]string{"darwin", "arm64"},
			),
		},
	}
}

func MarshalToWriter(w io.Writer, v interface{}) error {
	yamlEncoder := yaml.NewEncoder(w)
	yamlEncoder.SetIndent(2)
	if err := yamlEncoder.Encode(v); err != nil {
		return fmt.Errorf("marshaling to YAML: %w", err)
	}
	return yamlEncoder.Close()
}

func main() {
	if err := MarshalToWriter(os.Stdout, WorkflowCI()); err != nil {
		log.Fatalf("marshaling ci workflow: %v", err)
	}
}
