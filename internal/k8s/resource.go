// Package k8s describes rendered manifests in Kubernetes terms.
package k8s

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Resource identifies a rendered Kubernetes object for reporting. All fields
// are best-effort: documents that are not Kubernetes objects yield a Resource
// with empty fields.
type Resource struct {
	// GVK is the GroupVersionKind of the resource.
	GVK schema.GroupVersionKind

	// Name is metadata.name.
	Name string

	// Namespace is metadata.namespace (may be empty for cluster-scoped).
	Namespace string

	// SourcePath is the Helm template path that produced this resource
	// (e.g., "my-chart/charts/postgresql/templates/statefulset.yaml").
	// Empty when the source is unknown.
	SourcePath string
}

// FromObject builds a Resource from a decoded manifest.
func FromObject(obj map[string]interface{}) *Resource {
	u := &unstructured.Unstructured{Object: obj}

	return &Resource{
		GVK:       schema.FromAPIVersionAndKind(u.GetAPIVersion(), u.GetKind()),
		Name:      u.GetName(),
		Namespace: u.GetNamespace(),
	}
}

// APIVersion returns the apiVersion string (e.g. "apps/v1").
func (r *Resource) APIVersion() string {
	return r.GVK.GroupVersion().String()
}

// Kind returns the resource kind (e.g. "Deployment").
func (r *Resource) Kind() string {
	return r.GVK.Kind
}

// QualifiedName returns "kind/namespace/name". The namespace is omitted when
// unset, and only the kind is returned for a resource without a name.
func (r *Resource) QualifiedName() string {
	kind := r.Kind()
	if kind == "" {
		kind = "<unknown>"
	}

	if r.Name == "" {
		return kind
	}

	if r.Namespace != "" {
		return kind + "/" + r.Namespace + "/" + r.Name
	}

	return kind + "/" + r.Name
}

// String returns the qualified name together with the apiVersion.
func (r *Resource) String() string {
	if v := r.APIVersion(); v != "" {
		return r.QualifiedName() + " (" + v + ")"
	}

	return r.QualifiedName()
}

// SourceChart returns the chart that rendered this resource: the innermost
// subchart, or empty string for the root chart or an unknown source.
func (r *Resource) SourceChart() string {
	if r.SourcePath == "" {
		return ""
	}

	return ExtractSubchart(r.SourcePath)
}

// ExtractSubchart extracts the innermost subchart name from a Helm template
// path. Example: "root/charts/backend/charts/postgresql/templates/sts.yaml"
// → "postgresql". Returns empty string for root chart templates.
func ExtractSubchart(templatePath string) string {
	const chartsDir = "/charts/"

	idx := strings.LastIndex(templatePath, chartsDir)
	if idx < 0 {
		return ""
	}

	rest := templatePath[idx+len(chartsDir):]

	if slashIdx := strings.Index(rest, "/"); slashIdx > 0 {
		return rest[:slashIdx]
	}

	return rest
}

// SourcePathFromComment extracts the template path from a Helm
// "# Source: <path>" comment block. Returns empty string when absent.
func SourcePathFromComment(comment string) string {
	const prefix = "# Source:"

	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}

	return ""
}
