package utils

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"text/template"

	"k8s.io/apimachinery/pkg/types"

	v1 "github.com/openshift-splat-team/lockable-resource-manager/pkg/apis/lockableresources.splat.io/v1"
)

var (
	parsedTemplate *template.Template

	envVarName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	var err error
	sourceTemplate := `export {{.Variable}}="{{join .Resources ","}}"
{{- range $i, $name := .Resources}}
export {{$.Variable}}{{$i}}="{{$name}}"
{{- end}}
`

	parsedTemplate, err = template.New("source").Funcs(template.FuncMap{"join": strings.Join}).Parse(sourceTemplate)
	if err != nil {
		panic(err)
	}
}

// BuildRef returns the build reference under which a lock request holds its resources.
func BuildRef(request *v1.LockRequest) string {
	return request.Namespace + "/" + request.Name
}

// NamespaceBuildPrefix returns the prefix shared by the build references of all
// lock requests in the namespace.
func NamespaceBuildPrefix(namespace string) string {
	return namespace + "/"
}

// Project returns the project owning the lock request. It defaults to the namespace.
func Project(request *v1.LockRequest) string {
	if len(request.Spec.Project) > 0 {
		return request.Spec.Project
	}
	return request.Namespace
}

// QueueItemID derives a stable, non-zero queue item id from an object UID.
func QueueItemID(uid types.UID) int64 {
	h := fnv.New64a()
	h.Write([]byte(uid))
	id := int64(h.Sum64() & (1<<63 - 1))
	if id == v1.NotQueued {
		return 1
	}
	return id
}

// LockedResources records the name and description of each resource.
func LockedResources(resources v1.LockableResources) []v1.LockedResource {
	locked := make([]v1.LockedResource, 0, len(resources))
	for _, r := range resources {
		locked = append(locked, v1.LockedResource{
			Name:        r.Name,
			Description: r.Spec.Description,
		})
	}
	return locked
}

// ValidateVariable checks that the variable can be exported by a shell. An
// empty variable is valid.
func ValidateVariable(variable string) error {
	variable = strings.TrimSpace(variable)
	if len(variable) > 0 && !envVarName.MatchString(variable) {
		return fmt.Errorf("%q is not a valid environment variable name", variable)
	}
	return nil
}

// GenerateEnvVars exports the locked resource names into the variable of the
// request: the comma separated list as the variable itself and each name as
// the variable suffixed by its index.
func GenerateEnvVars(request *v1.LockRequest, names []string) error {
	if err := ValidateVariable(request.Spec.Variable); err != nil {
		return err
	}
	variable := strings.TrimSpace(request.Spec.Variable)
	if len(variable) == 0 {
		request.Status.EnvVars = ""
		return nil
	}

	inputs := struct {
		Variable  string
		Resources []string
	}{
		Variable:  variable,
		Resources: names,
	}

	outBytes := new(bytes.Buffer)
	err := parsedTemplate.Execute(outBytes, inputs)
	if err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}
	request.Status.EnvVars = outBytes.String()
	return nil
}
