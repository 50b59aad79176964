// Package report turns the outcome of a reconcile batch into a YAML
// document: what happened to every candidate, how it diverged from the
// template, and the diagnostics raised along the way.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/variantify/internal/diff"
	"github.com/specialistvlad/variantify/internal/reconcile"
	"github.com/specialistvlad/variantify/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Report is the YAML document written after a batch.
type Report struct {
	RunID      string      `yaml:"run_id,omitempty"`
	Template   string      `yaml:"template"`
	Candidates []Candidate `yaml:"candidates"`
	References References  `yaml:"references"`
	// Unresolved lists identities discovered on candidates that no rebuilt
	// graph replaced.
	Unresolved  []string     `yaml:"unresolved,omitempty"`
	Diagnostics []Diagnostic `yaml:"diagnostics,omitempty"`
}

// Candidate is the outcome for one candidate.
type Candidate struct {
	Address string `yaml:"address"`
	Outcome string `yaml:"outcome"`
	Reason  string `yaml:"reason,omitempty"`
	// Copy is the address of the rebuilt graph.
	Copy       string           `yaml:"copy,omitempty"`
	Divergence []NodeDivergence `yaml:"divergence,omitempty"`
}

// NodeDivergence lists what one candidate node changed relative to its
// template node.
type NodeDivergence struct {
	Node             string        `yaml:"node"`
	AddedBehaviors   []string      `yaml:"added_behaviors,omitempty"`
	RemovedBehaviors []string      `yaml:"removed_behaviors,omitempty"`
	ModifiedFields   []FieldChange `yaml:"modified_fields,omitempty"`
	AddedChildren    []string      `yaml:"added_children,omitempty"`
	Expanded         bool          `yaml:"expanded,omitempty"`
	Selected         bool          `yaml:"selected,omitempty"`
}

// FieldChange is one modified field. A deleted field has the value
// "<deleted>".
type FieldChange struct {
	Owner string `yaml:"owner"`
	Path  string `yaml:"path"`
	Value string `yaml:"value"`
}

type References struct {
	Rewritten int `yaml:"rewritten"`
	Skipped   int `yaml:"skipped"`
}

type Diagnostic struct {
	Severity string `yaml:"severity"`
	Summary  string `yaml:"summary"`
	Detail   string `yaml:"detail,omitempty"`
	Range    string `yaml:"range,omitempty"`
}

// Input is everything Build needs.
type Input struct {
	RunID    string
	Template string
	// Candidates names every candidate, in the order given to the batch.
	Candidates []string
	Result     *reconcile.Result
	// FormatValue renders field values. It defaults to scene.Describe.
	FormatValue func(cty.Value) string
}

// Build assembles the report of a finished batch.
func Build(in Input) *Report {
	format := in.FormatValue
	if format == nil {
		format = scene.Describe
	}
	res := in.Result
	r := &Report{
		RunID:    in.RunID,
		Template: in.Template,
	}

	for i, o := range res.Outcomes {
		c := Candidate{
			Outcome: o.Status.String(),
			Reason:  o.Reason,
		}
		if i < len(in.Candidates) {
			c.Address = in.Candidates[i]
		}
		if o.Copy != nil {
			c.Copy = o.Copy.Address().String()
		}
		if i < len(res.Trees) && res.Trees[i] != nil && !res.Trees[i].Invalid() {
			c.Divergence = divergence(res.Trees[i], format)
		}
		r.Candidates = append(r.Candidates, c)
	}

	if res.Rewrite != nil {
		r.References = References{Rewritten: res.Rewrite.Rewritten, Skipped: res.Rewrite.Skipped}
	}
	for _, id := range res.Unresolved {
		r.Unresolved = append(r.Unresolved, id.String())
	}
	for _, d := range res.Diagnostics {
		r.Diagnostics = append(r.Diagnostics, diagnostic(d))
	}
	return r
}

func divergence(t *diff.Tree, format func(cty.Value) string) []NodeDivergence {
	var out []NodeDivergence
	tmpl := t.Template()
	t.Root().Walk(func(n *diff.Node) {
		if n.Empty() && !n.Expanded() && !n.Selected() {
			return
		}
		name := tmpl.Name()
		if rel := n.Template().AddressFrom(tmpl); !rel.IsRoot() {
			name += "." + rel.String()
		}
		nd := NodeDivergence{
			Node:     name,
			Expanded: n.Expanded(),
			Selected: n.Selected(),
		}
		for _, b := range n.AddedBehaviors() {
			nd.AddedBehaviors = append(nd.AddedBehaviors, string(b))
		}
		for _, b := range n.RemovedBehaviors() {
			nd.RemovedBehaviors = append(nd.RemovedBehaviors, string(b))
		}
		for _, f := range n.ModifiedFields() {
			nd.ModifiedFields = append(nd.ModifiedFields, FieldChange{
				Owner: f.Owner.String(),
				Path:  scene.FormatPath(f.Path),
				Value: formatField(f.Value, format),
			})
		}
		for _, c := range n.AddedChildren() {
			nd.AddedChildren = append(nd.AddedChildren, c.Name())
		}
		out = append(out, nd)
	})
	return out
}

func formatField(v cty.Value, format func(cty.Value) string) string {
	if v == cty.NilVal {
		return scene.Describe(v)
	}
	return format(v)
}

func diagnostic(d *hcl.Diagnostic) Diagnostic {
	out := Diagnostic{
		Severity: "warning",
		Summary:  d.Summary,
		Detail:   d.Detail,
	}
	if d.Severity == hcl.DiagError {
		out.Severity = "error"
	}
	if d.Subject != nil {
		out.Range = d.Subject.String()
	}
	return out
}

// Write encodes r as YAML to w.
func (r *Report) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return enc.Close()
}

// WriteFile writes r as YAML to the file at path.
func (r *Report) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
