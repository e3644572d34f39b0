package domain

type ResponseType int

const (
	ResponsePong                  ResponseType = 1
	ResponseMessage               ResponseType = 4
	ResponseDeferredMessage       ResponseType = 5
	ResponseDeferredUpdateMessage ResponseType = 6
	ResponseUpdateMessage         ResponseType = 7
	ResponseAutocompleteResult    ResponseType = 8
	ResponseModal                 ResponseType = 9
)

// FlagEphemeral makes a message visible to the invoking user only.
const FlagEphemeral = 1 << 6

// Response is what the dispatch layer hands back to the platform.
type Response struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData covers messages, modals and autocomplete results.
type ResponseData struct {
	Content    string               `json:"content,omitempty"`
	Embeds     []Embed              `json:"embeds,omitempty"`
	Components []Component          `json:"components,omitempty"`
	Flags      int                  `json:"flags,omitempty"`
	Choices    []AutocompleteChoice `json:"choices,omitempty"`
	CustomID   string               `json:"custom_id,omitempty"`
	Title      string               `json:"title,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type AutocompleteChoice struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func Pong() *Response {
	return &Response{Type: ResponsePong}
}

func MessageResponse(data *ResponseData) *Response {
	return &Response{Type: ResponseMessage, Data: data}
}

func UpdateResponse(data *ResponseData) *Response {
	return &Response{Type: ResponseUpdateMessage, Data: data}
}

func DeferredMessage(ephemeral bool) *Response {
	r := &Response{Type: ResponseDeferredMessage}
	if ephemeral {
		r.Data = &ResponseData{Flags: FlagEphemeral}
	}
	return r
}

func DeferredUpdate() *Response {
	return &Response{Type: ResponseDeferredUpdateMessage}
}

func ModalResponse(customID, title string, rows ...Component) *Response {
	return &Response{Type: ResponseModal, Data: &ResponseData{CustomID: customID, Title: title, Components: rows}}
}

func AutocompleteResponse(choices ...AutocompleteChoice) *Response {
	if choices == nil {
		choices = []AutocompleteChoice{}
	}
	return &Response{Type: ResponseAutocompleteResult, Data: &ResponseData{Choices: choices}}
}
