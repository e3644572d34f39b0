package domain

type InteractionType int

const (
	InteractionPing         InteractionType = 1
	InteractionCommand      InteractionType = 2
	InteractionComponent    InteractionType = 3
	InteractionAutocomplete InteractionType = 4
	InteractionModalSubmit  InteractionType = 5
)

func (t InteractionType) String() string {
	switch t {
	case InteractionPing:
		return "ping"
	case InteractionCommand:
		return "command"
	case InteractionComponent:
		return "component"
	case InteractionAutocomplete:
		return "autocomplete"
	case InteractionModalSubmit:
		return "modal_submit"
	default:
		return "unknown"
	}
}

type CommandType int

const (
	CommandChatInput CommandType = 1
	CommandUser      CommandType = 2
	CommandMessage   CommandType = 3
)

// Interaction is the inbound event posted by the platform.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          InteractionType  `json:"type"`
	Token         string           `json:"token"`
	GuildID       string           `json:"guild_id,omitempty"`
	ChannelID     string           `json:"channel_id,omitempty"`
	Member        *Member          `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
	Locale        string           `json:"locale,omitempty"`
	Data          *InteractionData `json:"data,omitempty"`
	Message       *Message         `json:"message,omitempty"`
}

// InteractionData holds the command descriptor, or the custom id for components and modals.
type InteractionData struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name,omitempty"`
	Type          CommandType     `json:"type,omitempty"`
	GuildID       string          `json:"guild_id,omitempty"`
	Options       []CommandOption `json:"options,omitempty"`
	TargetID      string          `json:"target_id,omitempty"`
	CustomID      string          `json:"custom_id,omitempty"`
	ComponentType ComponentType   `json:"component_type,omitempty"`
	Values        []string        `json:"values,omitempty"`
	Components    []Component     `json:"components,omitempty"`
}

type CommandOption struct {
	Name    string          `json:"name"`
	Type    int             `json:"type"`
	Value   any             `json:"value,omitempty"`
	Focused bool            `json:"focused,omitempty"`
	Options []CommandOption `json:"options,omitempty"`
}

// StringValue returns the option value when it is a string.
func (o CommandOption) StringValue() string {
	s, _ := o.Value.(string)
	return s
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Member struct {
	User        *User  `json:"user,omitempty"`
	Nick        string `json:"nick,omitempty"`
	Permissions string `json:"permissions,omitempty"`
}

type Message struct {
	ID         string      `json:"id"`
	ChannelID  string      `json:"channel_id,omitempty"`
	Content    string      `json:"content,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Invoker returns the user behind the interaction, in a guild or in a DM.
func (i *Interaction) Invoker() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// CommandGuildID is the guild a command was registered in, empty for global commands.
func (i *Interaction) CommandGuildID() string {
	if i.Data == nil {
		return ""
	}
	return i.Data.GuildID
}

// Option finds a top level command option by name.
func (d *InteractionData) Option(name string) (CommandOption, bool) {
	for _, o := range d.Options {
		if o.Name == name {
			return o, true
		}
	}
	return CommandOption{}, false
}

// Focused returns the option the user is typing in during autocomplete.
func (d *InteractionData) Focused() (CommandOption, bool) {
	var walk func(opts []CommandOption) (CommandOption, bool)
	walk = func(opts []CommandOption) (CommandOption, bool) {
		for _, o := range opts {
			if o.Focused {
				return o, true
			}
			if found, ok := walk(o.Options); ok {
				return found, true
			}
		}
		return CommandOption{}, false
	}
	return walk(d.Options)
}

// ModalValues flattens the text inputs of a modal submission by custom id.
func (d *InteractionData) ModalValues() map[string]string {
	values := make(map[string]string)
	var walk func(cs []Component)
	walk = func(cs []Component) {
		for _, c := range cs {
			if c.Type == ComponentTextInput {
				values[c.CustomID] = c.Value
			}
			walk(c.Components)
		}
	}
	walk(d.Components)
	return values
}
