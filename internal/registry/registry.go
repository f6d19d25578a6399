// Package registry loads and serves the specialist role catalog. The
// catalog is deployment configuration: roles, their authority
// relationships, and their flags come from a YAML file, never from code.
// After a successful load the registry is immutable.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/harrison/steward/internal/models"
)

// ErrSchema indicates a malformed role catalog: a dangling parent
// reference, a duplicate role, or an authority cycle. Loading fails
// outright; the governor refuses to start on an inconsistent catalog.
var ErrSchema = errors.New("registry: invalid role catalog")

// Registry is the immutable role catalog.
type Registry struct {
	roles    map[string]*models.Role
	children map[string][]string
}

type catalogFile struct {
	Roles []models.Role `yaml:"roles"`
}

// LoadFile reads and validates a role catalog from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role catalog: %w", err)
	}
	return Load(data)
}

// Load parses and validates a role catalog from YAML bytes. A cycle or
// dangling parent reference is fatal: no usable registry is returned.
func Load(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	if len(file.Roles) == 0 {
		return nil, fmt.Errorf("%w: catalog defines no roles", ErrSchema)
	}

	roles := make(map[string]*models.Role, len(file.Roles))
	for i := range file.Roles {
		role := &file.Roles[i]
		if err := role.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
		if _, dup := roles[role.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate role %s", ErrSchema, role.Name)
		}
		roles[role.Name] = role
	}

	// Dangling parent references are load-time fatal.
	for _, role := range roles {
		if role.ReportsTo != "" {
			if _, ok := roles[role.ReportsTo]; !ok {
				return nil, fmt.Errorf("%w: role %s reports to unknown role %s",
					ErrSchema, role.Name, role.ReportsTo)
			}
		}
	}

	if cycle := findAuthorityCycle(roles); cycle != "" {
		return nil, fmt.Errorf("%w: authority cycle through role %s", ErrSchema, cycle)
	}

	// An always-required role reporting through a confirmation-gated
	// ancestor is contradictory: its mandatory presence could only be
	// satisfied by skipping the confirmation gate. Refuse the catalog.
	for _, role := range roles {
		if !role.AlwaysRequired {
			continue
		}
		for parent := roles[role.ReportsTo]; parent != nil; parent = roles[parent.ReportsTo] {
			if parent.RequiresConfirmation {
				return nil, fmt.Errorf("%w: always-required role %s reports through confirmation-gated role %s",
					ErrSchema, role.Name, parent.Name)
			}
		}
	}

	children := make(map[string][]string)
	for _, role := range roles {
		if role.ReportsTo != "" {
			children[role.ReportsTo] = append(children[role.ReportsTo], role.Name)
		}
	}
	for parent := range children {
		sort.Strings(children[parent])
	}

	return &Registry{roles: roles, children: children}, nil
}

// findAuthorityCycle walks every role's parent chain with DFS color
// marking (white=unvisited, gray=visiting, black=visited) and returns the
// name of a role on a cycle, or "" if the forest is acyclic.
func findAuthorityCycle(roles map[string]*models.Role) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	colors := make(map[string]int, len(roles))
	for name := range roles {
		if colors[name] != white {
			continue
		}
		node := name
		var path []string
		for node != "" && colors[node] == white {
			colors[node] = gray
			path = append(path, node)
			node = roles[node].ReportsTo
		}
		if node != "" && colors[node] == gray {
			return node
		}
		for _, visited := range path {
			colors[visited] = black
		}
	}
	return ""
}

// Get returns the role with the given name.
func (r *Registry) Get(name string) (*models.Role, bool) {
	role, ok := r.roles[name]
	return role, ok
}

// Exists reports whether the named role is in the catalog.
func (r *Registry) Exists(name string) bool {
	_, ok := r.roles[name]
	return ok
}

// Roles returns every role in the catalog, sorted by name.
func (r *Registry) Roles() []*models.Role {
	out := make([]*models.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveChain returns the authority chain from the named role up to its
// root, starting with the role itself. The chain is finite because Load
// rejects cycles.
func (r *Registry) ResolveChain(name string) ([]string, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, fmt.Errorf("role %s not found in catalog", name)
	}

	chain := []string{role.Name}
	for role.ReportsTo != "" {
		role = r.roles[role.ReportsTo]
		chain = append(chain, role.Name)
	}
	return chain, nil
}

// Children returns the direct sub-roles of the named role, sorted.
func (r *Registry) Children(name string) []string {
	return r.children[name]
}

// AlwaysRequired returns the names of all roles flagged always-required,
// sorted.
func (r *Registry) AlwaysRequired() []string {
	var out []string
	for _, role := range r.roles {
		if role.AlwaysRequired {
			out = append(out, role.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of roles in the catalog.
func (r *Registry) Len() int {
	return len(r.roles)
}
