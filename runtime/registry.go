package runtime

import (
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/state"

	"github.com/samber/lo"
)

type commandKey struct {
	name    string
	kind    domain.CommandType
	guildID string
}

// Registry resolves interactions to views.
// Every Register happens during start-up, then Seal is called and the registry
// is only read. Reads therefore need no lock.
type Registry struct {
	views     []*View
	byPrefix  map[string]*View
	byCommand map[commandKey]*View
	sealed    bool
}

func NewRegistry() *Registry {
	return &Registry{
		byPrefix:  make(map[string]*View),
		byCommand: make(map[commandKey]*View),
	}
}

// Register adds views in order. A prefix or (name, type, guild) triple already
// in use is a start-up error, never a silent shadowing.
func (r *Registry) Register(views ...*View) error {
	if r.sealed {
		return errors.ErrRegistrySealed
	}
	for _, v := range views {
		if err := v.validate(); err != nil {
			return err
		}
		if _, dup := r.byPrefix[v.Prefix]; dup {
			return fmt.Errorf("%w: %q", errors.ErrDuplicateCustomIDPrefix, v.Prefix)
		}
		if v.Command != nil {
			key := keyOf(*v.Command)
			if other, dup := r.byCommand[key]; dup {
				return fmt.Errorf("%w: %q (type %d, guild %q) claimed by %q and %q",
					errors.ErrDuplicateCommand, key.name, key.kind, key.guildID, other.Prefix, v.Prefix)
			}
			r.byCommand[key] = v
		}
		r.byPrefix[v.Prefix] = v
		r.views = append(r.views, v)
	}
	return nil
}

// Seal ends registration.
func (r *Registry) Seal() {
	r.sealed = true
}

func (r *Registry) Sealed() bool {
	return r.sealed
}

// FindByCommand matches name, type and guild exactly: a guild scoped view and a
// global view sharing a name resolve independently.
func (r *Registry) FindByCommand(name string, kind domain.CommandType, guildID string) (*View, bool) {
	v, ok := r.byCommand[commandKey{name: name, kind: kind, guildID: guildID}]
	return v, ok
}

func (r *Registry) FindByPrefix(prefix string) (*View, bool) {
	v, ok := r.byPrefix[prefix]
	return v, ok
}

// SchemaFor is the lookup customid.Decode expects.
func (r *Registry) SchemaFor(prefix string) (*state.Schema, bool) {
	v, ok := r.byPrefix[prefix]
	if !ok {
		return nil, false
	}
	return v.schema(), true
}

// Views returns the registered views in registration order.
func (r *Registry) Views() []*View {
	return append([]*View(nil), r.views...)
}

// Commands lists the commands to publish to the platform.
func (r *Registry) Commands() []CommandSpec {
	return lo.FilterMap(r.views, func(v *View, _ int) (CommandSpec, bool) {
		if v.Command == nil {
			return CommandSpec{}, false
		}
		return *v.Command, true
	})
}

// CommandsByGuild groups Commands by guild id. Global commands are under "".
func (r *Registry) CommandsByGuild() map[string][]CommandSpec {
	return lo.GroupBy(r.Commands(), func(c CommandSpec) string {
		return c.GuildID
	})
}

// VerifyBudgets encodes the worst case state of every view and fails on the
// first one whose custom id exceeds the platform limit.
func (r *Registry) VerifyBudgets() error {
	for _, v := range r.views {
		if _, err := v.WorstCaseLength(); err != nil {
			return err
		}
	}
	return nil
}

func keyOf(c CommandSpec) commandKey {
	return commandKey{name: c.Name, kind: c.Type, guildID: c.GuildID}
}
