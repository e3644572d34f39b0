package domain

type ComponentType int

const (
	ComponentActionRow         ComponentType = 1
	ComponentButton            ComponentType = 2
	ComponentStringSelect      ComponentType = 3
	ComponentTextInput         ComponentType = 4
	ComponentUserSelect        ComponentType = 5
	ComponentRoleSelect        ComponentType = 6
	ComponentMentionableSelect ComponentType = 7
	ComponentChannelSelect     ComponentType = 8
)

type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

// Component is any message or modal component. Action rows nest their children in Components.
type Component struct {
	Type        ComponentType  `json:"type"`
	CustomID    string         `json:"custom_id,omitempty"`
	Style       int            `json:"style,omitempty"`
	Label       string         `json:"label,omitempty"`
	URL         string         `json:"url,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	MinValues   *int           `json:"min_values,omitempty"`
	MaxValues   *int           `json:"max_values,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	Value       string         `json:"value,omitempty"`
	Required    *bool          `json:"required,omitempty"`
	Components  []Component    `json:"components,omitempty"`
}

type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

func ActionRow(children ...Component) Component {
	return Component{Type: ComponentActionRow, Components: children}
}

func Button(customID, label string, style ButtonStyle) Component {
	return Component{Type: ComponentButton, CustomID: customID, Label: label, Style: int(style)}
}

func LinkButton(url, label string) Component {
	return Component{Type: ComponentButton, URL: url, Label: label, Style: int(ButtonLink)}
}

func StringSelect(customID, placeholder string, options ...SelectOption) Component {
	return Component{Type: ComponentStringSelect, CustomID: customID, Placeholder: placeholder, Options: options}
}

// TextInput styles: 1 short, 2 paragraph.
func TextInput(customID, label string, style int, value string) Component {
	return Component{Type: ComponentTextInput, CustomID: customID, Label: label, Style: style, Value: value}
}

// Interactive reports whether the component carries a custom id the platform will send back.
func (c Component) Interactive() bool {
	switch c.Type {
	case ComponentButton:
		return c.Style != int(ButtonLink)
	case ComponentStringSelect, ComponentUserSelect, ComponentRoleSelect,
		ComponentMentionableSelect, ComponentChannelSelect:
		return true
	default:
		return false
	}
}
