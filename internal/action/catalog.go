// Package action decides, throttles and executes the single pointer action
// taken per control cycle.
package action

import (
	"fmt"
	"path/filepath"
	"time"
)

// Name identifies an automated action.
type Name string

const (
	None       Name = ""
	OpenCourse Name = "open_course"
	Join       Name = "join"
	Answer     Name = "answer"
	Leave      Name = "leave"
	Return     Name = "return"
)

// Names lists every action in catalog order.
var Names = []Name{OpenCourse, Join, Answer, Leave, Return}

func (n Name) String() string {
	if n == None {
		return "none"
	}
	return string(n)
}

// DefaultCooldown is the minimum re-fire interval of throttled actions.
const DefaultCooldown = 5 * time.Second

// Spec binds an action to its target image and cooldown. OpenCourse has no
// fixed target; its image comes from the course icon lookup.
type Spec struct {
	Name     Name
	Target   string        // Path of the target image, empty for OpenCourse
	Cooldown time.Duration // Zero means unthrottled
}

// Catalog is the fixed set of automated actions.
type Catalog struct {
	specs map[Name]Spec
}

// NewCatalog builds the catalog from the action-target directory. targets
// maps action names to file names relative to dir; missing entries use
// "<name>.png". answer and return are throttled by cooldown.
func NewCatalog(dir string, targets map[string]string, cooldown time.Duration) *Catalog {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	c := &Catalog{specs: make(map[Name]Spec, len(Names))}
	for _, n := range Names {
		spec := Spec{Name: n}
		if n != OpenCourse {
			file := targets[string(n)]
			if file == "" {
				file = string(n) + ".png"
			}
			if filepath.IsAbs(file) {
				spec.Target = file
			} else {
				spec.Target = filepath.Join(dir, file)
			}
		}
		if n == Answer || n == Return {
			spec.Cooldown = cooldown
		}
		c.specs[n] = spec
	}
	return c
}

// Lookup returns the spec of n.
func (c *Catalog) Lookup(n Name) (Spec, error) {
	spec, ok := c.specs[n]
	if !ok {
		return Spec{}, fmt.Errorf("unknown action %q", n)
	}
	return spec, nil
}

// Specs returns every spec in catalog order.
func (c *Catalog) Specs() []Spec {
	out := make([]Spec, 0, len(Names))
	for _, n := range Names {
		out = append(out, c.specs[n])
	}
	return out
}
