// Package workflow persists the change plan as a markdown checklist and
// drives it through its lifecycle. The plan file is a single-writer
// resource: every mutation goes through a file lock and an atomic write,
// because lifecycle transitions are not commutative.
package workflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/harrison/steward/internal/models"
)

var (
	taskLineRe    = regexp.MustCompile(`^- \[(?P<mark>[ xX])\] Task (?P<num>\d+): (?P<rest>.+)$`)
	rolesNoteRe   = regexp.MustCompile(`\s*\(roles: (?P<roles>[^)]*)\)`)
	confirmNoteRe = regexp.MustCompile(`\s*\(confirmed: (?P<by>[^,)]+), (?P<at>[^)]+)\)`)
)

type planFrontmatter struct {
	ID       string `yaml:"id"`
	Status   string `yaml:"status"`
	Created  string `yaml:"created"`
	Archived string `yaml:"archived,omitempty"`
	Request  string `yaml:"request"`
}

// RenderPlan serializes a plan to its markdown checklist form: YAML
// frontmatter followed by a task list with one checkbox line per task.
func RenderPlan(plan *models.Plan) []byte {
	var b strings.Builder

	front := planFrontmatter{
		ID:      plan.ID,
		Status:  string(plan.Status),
		Created: plan.CreatedAt.UTC().Format(time.RFC3339),
		Request: plan.Request,
	}
	if plan.ArchivedAt != nil {
		front.Archived = plan.ArchivedAt.UTC().Format(time.RFC3339)
	}

	b.WriteString("---\n")
	frontBytes, _ := yaml.Marshal(&front)
	b.Write(frontBytes)
	b.WriteString("---\n\n")

	b.WriteString("# Change Plan\n\n")
	fmt.Fprintf(&b, "> %s\n\n", plan.Request)
	b.WriteString("## Tasks\n\n")

	for _, task := range plan.Tasks {
		mark := " "
		if task.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] Task %d: %s", mark, task.Number, task.Description)
		if len(task.Roles) > 0 {
			fmt.Fprintf(&b, " (roles: %s)", strings.Join(task.Roles, ", "))
		}
		if task.Done && task.ConfirmedBy != "" {
			at := time.Now().UTC()
			if task.CompletedAt != nil {
				at = task.CompletedAt.UTC()
			}
			fmt.Fprintf(&b, " (confirmed: %s, %s)", task.ConfirmedBy, at.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// ParsePlan reads a plan back from its markdown form. The document must
// carry frontmatter with a valid status and a level-2 "Tasks" heading;
// task lines are matched by their checkbox shape.
func ParsePlan(content []byte) (*models.Plan, error) {
	frontmatter, body := splitFrontmatter(content)
	if frontmatter == nil {
		return nil, fmt.Errorf("plan file has no frontmatter")
	}

	var front planFrontmatter
	if err := yaml.Unmarshal(frontmatter, &front); err != nil {
		return nil, fmt.Errorf("failed to parse plan frontmatter: %w", err)
	}

	status, err := models.ParsePlanStatus(front.Status)
	if err != nil {
		return nil, fmt.Errorf("plan frontmatter: %w", err)
	}

	plan := &models.Plan{
		ID:      front.ID,
		Status:  status,
		Request: front.Request,
	}
	if front.Created != "" {
		created, err := time.Parse(time.RFC3339, front.Created)
		if err != nil {
			return nil, fmt.Errorf("plan frontmatter: invalid created timestamp: %w", err)
		}
		plan.CreatedAt = created
	}
	if front.Archived != "" {
		archived, err := time.Parse(time.RFC3339, front.Archived)
		if err != nil {
			return nil, fmt.Errorf("plan frontmatter: invalid archived timestamp: %w", err)
		}
		plan.ArchivedAt = &archived
	}

	if !hasTasksHeading(body) {
		return nil, fmt.Errorf("plan file has no Tasks section")
	}

	for _, line := range strings.Split(string(body), "\n") {
		m := taskLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		number, _ := strconv.Atoi(m[2])
		task := models.PlanTask{
			Number: number,
			Done:   strings.EqualFold(m[1], "x"),
		}

		rest := m[3]
		if cm := confirmNoteRe.FindStringSubmatch(rest); cm != nil {
			task.ConfirmedBy = strings.TrimSpace(cm[1])
			if at, err := time.Parse(time.RFC3339, strings.TrimSpace(cm[2])); err == nil {
				task.CompletedAt = &at
			}
			rest = confirmNoteRe.ReplaceAllString(rest, "")
		}
		if rm := rolesNoteRe.FindStringSubmatch(rest); rm != nil {
			for _, role := range strings.Split(rm[1], ",") {
				if role = strings.TrimSpace(role); role != "" {
					task.Roles = append(task.Roles, role)
				}
			}
			rest = rolesNoteRe.ReplaceAllString(rest, "")
		}
		task.Description = strings.TrimSpace(rest)

		plan.Tasks = append(plan.Tasks, task)
	}

	if len(plan.Tasks) == 0 {
		return nil, fmt.Errorf("plan file contains no tasks")
	}

	return plan, nil
}

// hasTasksHeading walks the markdown AST looking for the level-2 "Tasks"
// heading that anchors the checklist.
func hasTasksHeading(body []byte) bool {
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 2 {
			if strings.EqualFold(headingText(heading, body), "Tasks") {
				found = true
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
		}
	}
	return b.String()
}

// splitFrontmatter separates the YAML frontmatter between --- markers
// from the markdown body.
func splitFrontmatter(content []byte) ([]byte, []byte) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 3 || lines[0] != "---" {
		return nil, content
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == "---" {
			front := []byte(strings.Join(lines[1:i], "\n"))
			body := []byte(strings.Join(lines[i+1:], "\n"))
			return front, body
		}
	}
	return nil, content
}
